package store

import (
	"context"
	"fmt"
)

// RunSummary aggregates the events of one run.
type RunSummary struct {
	Token    string
	Events   int
	OK       int
	Failed   int
	FirstSeq int64
	LastSeq  int64
}

// GetLastSeq returns the highest seq number used in the store.
// Used for recovery to resume the logical clock from the correct position.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM events), 0),
			COALESCE((SELECT MAX(first_seq) FROM runs), 0)
		)
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}

// Summarize counts the ok and failed events of a run.
func (s *Store) Summarize(ctx context.Context, runToken string) (RunSummary, error) {
	run, err := s.ReadRun(ctx, runToken)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{Token: runToken, FirstSeq: run.FirstSeq, LastSeq: run.FirstSeq}
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(seq), ?)
		FROM events WHERE run_token = ?
	`, run.FirstSeq, runToken).Scan(&summary.Events, &summary.OK, &summary.Failed, &summary.LastSeq)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run %q: %w", runToken, err)
	}
	return summary, nil
}
