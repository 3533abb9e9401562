package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database string
	RunToken string // optional - latest run when empty
	Seq      int64  // optional - every event when 0
	ID       string // optional - run:lumi:event, searched across runs
	Raw      bool
	Runs     bool // list stored runs instead of events
}

// DumpEvent is one stored event in dump output.
type DumpEvent struct {
	Seq        int64          `json:"seq"`
	Event      string         `json:"event"`
	Status     ir.EventStatus `json:"status"`
	ErrorCode  string         `json:"error_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	OutputHash string         `json:"output_hash,omitempty"`
	Output     string         `json:"output,omitempty"`
	Refs       []ir.RefRecord `json:"refs,omitempty"`
}

// DumpResult is the output of the dump command.
type DumpResult struct {
	RunToken string      `json:"run_token"`
	Fillers  []string    `json:"fillers"`
	Events   []DumpEvent `json:"events"`
}

func (r DumpResult) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Run %s (fillers %s), %d events", r.RunToken, strings.Join(r.Fillers, ", "), len(r.Events))
	for _, ev := range r.Events {
		fmt.Fprintf(&buf, "\n[%d] %s %s", ev.Seq, ev.Event, ev.Status)
		if ev.Status != ir.StatusOK {
			fmt.Fprintf(&buf, " %s: %s", ev.ErrorCode, ev.Error)
			continue
		}
		fmt.Fprintf(&buf, " %s\n  %s", ev.OutputHash, ev.Output)
		for _, ref := range ev.Refs {
			fmt.Fprintf(&buf, "\n  %s[%d].%s -> %s[%d]", ref.Collection, ref.Index, ref.Field, ref.Target, ref.TargetIndex)
		}
	}
	return buf.String()
}

// RunListing is one stored run in dump --runs output.
type RunListing struct {
	RunToken string   `json:"run_token"`
	Fillers  []string `json:"fillers"`
	Events   int      `json:"events"`
	OK       int      `json:"ok"`
	Failed   int      `json:"failed"`
	FirstSeq int64    `json:"first_seq"`
	LastSeq  int64    `json:"last_seq"`
}

// RunsResult is the output of dump --runs.
type RunsResult struct {
	Runs []RunListing `json:"runs"`
}

func (r RunsResult) String() string {
	if len(r.Runs) == 0 {
		return "No runs stored."
	}
	var buf strings.Builder
	for i, run := range r.Runs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s seq %d-%d: %d events (%d ok, %d failed), fillers %s",
			run.RunToken, run.FirstSeq, run.LastSeq, run.Events, run.OK, run.Failed, strings.Join(run.Fillers, ", "))
	}
	return buf.String()
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print stored output events",
		Long: `Print the stored events of a run: status, output document and resolved
references.

--raw prints the full stored records, input included, as Go values.
--runs lists the stored runs, oldest first, with their event counts.

Examples:
  pandafill dump --db ./panda.db
  pandafill dump --db ./panda.db --run 0190a5e2-... --event 3
  pandafill dump --db ./panda.db --event 3 --raw
  pandafill dump --db ./panda.db --id 1:12:3456
  pandafill dump --db ./panda.db --runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run to dump (default latest)")
	cmd.Flags().Int64Var(&opts.Seq, "event", 0, "dump only the event with this seq")
	cmd.Flags().StringVar(&opts.ID, "id", "", "dump every stored copy of event run:lumi:event")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "dump full stored records")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "list stored runs")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Runs {
		result, err := listRuns(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return formatter.Success(result)
	}

	run, err := resolveRun(ctx, st, opts.RunToken)
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "no run to dump", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var records []ir.EventRecord
	switch {
	case opts.ID != "":
		id, err := parseEventID(opts.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --id", err)
		}
		records, err = st.FindEvents(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to find event %s", id), err)
		}
	case opts.Seq != 0:
		rec, err := st.ReadEvent(ctx, run.Token, opts.Seq)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read event %d", opts.Seq), err)
		}
		records = []ir.EventRecord{rec}
	default:
		records, err = st.ReadEvents(ctx, run.Token)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
	}

	if opts.Raw {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		cfg.Fdump(cmd.OutOrStdout(), run)
		for _, rec := range records {
			cfg.Fdump(cmd.OutOrStdout(), rec)
		}
		return nil
	}

	result := DumpResult{RunToken: run.Token, Fillers: run.Fillers, Events: make([]DumpEvent, len(records))}
	for i, rec := range records {
		result.Events[i] = DumpEvent{
			Seq:        rec.Seq,
			Event:      rec.ID.String(),
			Status:     rec.Status,
			ErrorCode:  rec.ErrorCode,
			Error:      rec.Error,
			OutputHash: rec.OutputHash,
			Output:     rec.Output,
			Refs:       rec.Refs,
		}
	}
	return formatter.SuccessForRun(run.Token, result)
}

func listRuns(ctx context.Context, st *store.Store) (RunsResult, error) {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return RunsResult{}, err
	}
	result := RunsResult{Runs: make([]RunListing, 0, len(runs))}
	for _, run := range runs {
		summary, err := st.Summarize(ctx, run.Token)
		if err != nil {
			return RunsResult{}, err
		}
		result.Runs = append(result.Runs, RunListing{
			RunToken: run.Token,
			Fillers:  run.Fillers,
			Events:   summary.Events,
			OK:       summary.OK,
			Failed:   summary.Failed,
			FirstSeq: summary.FirstSeq,
			LastSeq:  summary.LastSeq,
		})
	}
	return result, nil
}

// parseEventID parses "run:lumi:event".
func parseEventID(s string) (ir.EventID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return ir.EventID{}, fmt.Errorf("event id %q: want run:lumi:event", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return ir.EventID{}, fmt.Errorf("event id %q: %w", s, err)
		}
		nums[i] = n
	}
	return ir.EventID{Run: nums[0], Lumi: nums[1], Number: nums[2]}, nil
}
