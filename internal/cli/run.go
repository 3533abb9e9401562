package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/engine"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// Generator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Generator engine.RunTokenGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	RunToken    string `json:"run_token"`
	Database    string `json:"database"`
	Processed   int    `json:"processed"`
	OK          int    `json:"ok"`
	Failed      int    `json:"failed"`
	WriteErrors int    `json:"write_errors"`
	FirstSeq    int64  `json:"first_seq"`
	LastSeq     int64  `json:"last_seq"`
}

func (s RunSummary) String() string {
	return fmt.Sprintf("Run %s: %d events processed (%d ok, %d failed), last seq %d, written to %s",
		s.RunToken, s.Processed, s.OK, s.Failed, s.LastSeq, s.Database)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <events.yaml>",
		Short: "Fill events and store the output",
		Long: `Fill every event of a YAML event stream and write the results to a
SQLite database (created if it doesn't exist).

Events are read by a separate goroutine and processed one at a time by the
single-writer engine loop. A failed event is stored with its error code and
processing continues.

Exit codes:
  0 - All events processed and written (failed events included)
  1 - One or more events could not be written
  2 - Command error (bad config, unreadable events, database error)

Examples:
  pandafill run --db ./panda.db events.yaml
  pandafill run --config ./conf --db /tmp/test.db events.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config output.db)")

	return cmd
}

func runFill(opts *RunOptions, eventsPath string, cmd *cobra.Command) (err error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger, err := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	defer func() { _ = logger.Sync() }()

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create fillers", err)
	}
	canonical, hash, err := cfg.Canonical()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash config", err)
	}

	f, err := os.Open(eventsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open events file", err)
	}
	defer f.Close()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Output.DB
	}
	logger.Info("opening database", zap.String("path", dbPath))
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()

	parentCtx := commandContext(cmd)
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	lastSeq, err := st.GetLastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read last seq", err)
	}

	gen := opts.Generator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	eng := engine.New(proc, st, gen,
		engine.WithClock(engine.NewClockAt(lastSeq)),
		engine.WithLogger(logger),
	)

	run, err := eng.Begin(ctx, engine.RunInfo{
		Config:     string(canonical),
		ConfigHash: hash,
		IsRealData: cfg.IsRealData,
		UseTrigger: cfg.UseTrigger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	formatter.VerboseLog("Run %s started at seq %d", run.Token, run.FirstSeq)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	readErr := make(chan error, 1)
	go func() {
		readErr <- feedEvents(f, eng)
	}()

	runErr := eng.Run(ctx)
	if errors.Is(runErr, context.Canceled) && parentCtx.Err() == nil {
		// Interrupted by signal.
		runErr = nil
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}
	if err := <-readErr; err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	stats := eng.Stats()
	summary := RunSummary{
		RunToken:    run.Token,
		Database:    dbPath,
		Processed:   stats.Processed,
		OK:          stats.OK,
		Failed:      stats.Failed,
		WriteErrors: stats.WriteErrors,
		FirstSeq:    run.FirstSeq,
		LastSeq:     eng.Clock().Current(),
	}
	if err := formatter.SuccessForRun(run.Token, summary); err != nil {
		return err
	}
	if stats.WriteErrors > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d events could not be written", stats.WriteErrors))
	}
	return nil
}

// feedEvents decodes events from r and enqueues them, then stops the engine
// so Run returns once the queue drains.
func feedEvents(r io.Reader, eng *engine.Engine) error {
	defer eng.Stop()

	dec := ir.NewDecoder(r)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !eng.Enqueue(ev) {
			return nil
		}
	}
}
