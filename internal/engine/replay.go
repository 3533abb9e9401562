package engine

// # Replay
//
// A stored run can be replayed: every stored input is decoded and processed
// again by a Processor built from the stored configuration, and the outcome
// is compared with what was stored.
//
// Processing is deterministic: the output of an event depends only on the
// input event and the configuration, never on wall time, map iteration order
// or earlier events. A replay of an unchanged build therefore reproduces
// every output hash. Any difference is reported as a Mismatch.
//
// Replay never writes. It reads the store through EventSource so tests can
// feed it records directly.

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/store"
)

// EventSource reads a stored run. Implemented by *store.Store.
type EventSource interface {
	ReadRun(ctx context.Context, token string) (ir.RunRecord, error)
	ReadEvents(ctx context.Context, runToken string) ([]ir.EventRecord, error)
}

// Mismatch kinds.
const (
	MismatchBranches   = "branches"
	MismatchInputHash  = "input_hash"
	MismatchStatus     = "status"
	MismatchErrorCode  = "error_code"
	MismatchOutputHash = "output_hash"
	MismatchRefs       = "refs"
)

// Mismatch is one difference between a stored and a replayed outcome.
// Seq is 0 for run-level mismatches.
type Mismatch struct {
	Seq   int64      `json:"seq"`
	Event ir.EventID `json:"event"`
	Kind  string     `json:"kind"`
	Want  string     `json:"want"`
	Got   string     `json:"got"`
}

func (m Mismatch) String() string {
	if m.Seq == 0 {
		return fmt.Sprintf("run: %s: want %s, got %s", m.Kind, m.Want, m.Got)
	}
	return fmt.Sprintf("seq %d (event %s): %s: want %s, got %s", m.Seq, m.Event, m.Kind, m.Want, m.Got)
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	RunToken   string     `json:"run_token"`
	Events     int        `json:"events"`
	Matched    int        `json:"matched"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether the replay reproduced every stored outcome.
func (r *ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay reprocesses the stored run token with proc and compares outcomes.
// The returned error is reserved for failures to read or decode the run;
// differences are reported in the ReplayReport.
func Replay(ctx context.Context, src EventSource, token string, proc *Processor, logger *zap.Logger) (*ReplayReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	run, err := src.ReadRun(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	events, err := src.ReadEvents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	report := &ReplayReport{RunToken: token, Events: len(events), Mismatches: []Mismatch{}}

	if branches := []string(proc.Branches()); !slices.Equal(run.Branches, branches) {
		report.Mismatches = append(report.Mismatches, Mismatch{
			Kind: MismatchBranches,
			Want: fmt.Sprint(run.Branches),
			Got:  fmt.Sprint(branches),
		})
	}

	for _, rec := range events {
		ev, err := store.DecodeInput(rec)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}

		found := compareEvent(ctx, proc, rec, ev)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(found) == 0 {
			report.Matched++
			continue
		}
		for _, m := range found {
			logger.Warn("replay mismatch", zap.Stringer("mismatch", m))
		}
		report.Mismatches = append(report.Mismatches, found...)
	}

	logger.Info("replay finished",
		zap.String("run", token),
		zap.Int("events", report.Events),
		zap.Int("matched", report.Matched),
		zap.Int("mismatches", len(report.Mismatches)),
	)
	return report, nil
}

func compareEvent(ctx context.Context, proc *Processor, rec ir.EventRecord, ev *ir.Event) []Mismatch {
	var found []Mismatch
	add := func(kind, want, got string) {
		found = append(found, Mismatch{Seq: rec.Seq, Event: rec.ID, Kind: kind, Want: want, Got: got})
	}

	res, err := proc.Process(ctx, ev)
	if res == nil {
		return nil
	}

	if res.InputHash != rec.InputHash {
		add(MismatchInputHash, rec.InputHash, res.InputHash)
	}

	status := ir.StatusOK
	if err != nil {
		status = ir.StatusFailed
	}
	if status != rec.Status {
		add(MismatchStatus, string(rec.Status), string(status))
		return found
	}

	if status == ir.StatusFailed {
		if code := string(CodeOf(err)); code != rec.ErrorCode {
			add(MismatchErrorCode, rec.ErrorCode, code)
		}
		return found
	}

	if res.OutputHash != rec.OutputHash {
		add(MismatchOutputHash, rec.OutputHash, res.OutputHash)
	}
	if !slices.Equal(sortedRefs(res.Refs), sortedRefs(rec.Refs)) {
		add(MismatchRefs, fmt.Sprint(len(rec.Refs)), fmt.Sprint(len(res.Refs)))
	}
	return found
}

// sortedRefs orders refs the way the store returns them.
func sortedRefs(refs []ir.RefRecord) []ir.RefRecord {
	out := slices.Clone(refs)
	slices.SortFunc(out, func(a, b ir.RefRecord) int {
		return cmp.Or(
			strings.Compare(a.Collection, b.Collection),
			cmp.Compare(a.Index, b.Index),
			strings.Compare(a.Field, b.Field),
		)
	})
	return out
}
