package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pandafill/internal/config"
	"github.com/roach88/pandafill/internal/engine"
	"github.com/roach88/pandafill/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunToken string // optional - latest run when empty
}

// ReplayResult holds the replay result of one run.
type ReplayResult struct {
	RunToken      string            `json:"run_token"`
	Events        int               `json:"events"`
	Matched       int               `json:"matched"`
	Mismatches    []engine.Mismatch `json:"mismatches,omitempty"`
	Deterministic bool              `json:"deterministic"`
}

func (r ReplayResult) String() string {
	var buf strings.Builder
	status := "deterministic"
	if !r.Deterministic {
		status = "NOT deterministic"
	}
	fmt.Fprintf(&buf, "Run %s: %d/%d events reproduced, %s", r.RunToken, r.Matched, r.Events, status)
	for _, m := range r.Mismatches {
		fmt.Fprintf(&buf, "\n  %s", m)
	}
	return buf.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-fill stored inputs and verify the stored outputs",
		Long: `Re-process every stored input event of a run and compare the outcome
with what was stored: status, error code, output hash and references.

The run's own stored configuration is used unless --config is given.

Exit codes:
  0 - Every event reproduced
  1 - Differences detected
  2 - Command error (database not found, unknown run, etc.)

Examples:
  pandafill replay --db ./panda.db
  pandafill replay --db ./panda.db --run 0190a5e2-...
  pandafill replay --db ./panda.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "replay a specific run (default latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, opts.RunToken)
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "no run to replay", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var cfg *config.Config
	if opts.ConfigDir != "" {
		cfg, err = config.Load(opts.ConfigDir)
	} else {
		cfg, err = config.Parse("run-"+run.Token+".json", []byte(run.Config))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	formatter.VerboseLog("Replaying run %s with fillers %v", run.Token, cfg.Fillers)

	logger, err := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	defer func() { _ = logger.Sync() }()

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create fillers", err)
	}

	report, err := engine.Replay(ctx, st, run.Token, proc, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.Token), err)
	}

	result := ReplayResult{
		RunToken:      report.RunToken,
		Events:        report.Events,
		Matched:       report.Matched,
		Mismatches:    report.Mismatches,
		Deterministic: report.OK(),
	}
	if err := formatter.SuccessForRun(run.Token, result); err != nil {
		return err
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, fmt.Sprintf("replay of run %s found %d differences", run.Token, len(result.Mismatches)))
	}
	return nil
}
