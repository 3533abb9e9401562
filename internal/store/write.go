package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pandafill/internal/ir"
)

// WriteRun inserts a run record into the store.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - rewriting a run keeps
// the first record.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	fillersJSON, err := marshalStrings(run.Fillers)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	branchesJSON, err := marshalStrings(run.Branches)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(token, config, config_hash, fillers, branches, is_real_data, use_trigger,
		 schema_version, engine_version, first_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Config,
		run.ConfigHash,
		fillersJSON,
		branchesJSON,
		boolToInt(run.IsRealData),
		boolToInt(run.UseTrigger),
		run.SchemaVersion,
		run.EngineVersion,
		run.FirstSeq,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent inserts an event record and its refs in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: if (run_token, seq) already
// exists neither the event nor its refs are rewritten.
//
// Note: The run referenced by RunToken must exist (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, rec ir.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO events
		(run_token, seq, run, lumi, event, input, input_hash, output, output_hash,
		 status, error_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`,
		rec.RunToken,
		rec.Seq,
		int64(rec.ID.Run),
		int64(rec.ID.Lumi),
		int64(rec.ID.Number),
		rec.Input,
		rec.InputHash,
		nullString(rec.Output),
		nullString(rec.OutputHash),
		string(rec.Status),
		nullString(rec.ErrorCode),
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("write event %s: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write event: rows affected: %w", err)
	}
	if n == 0 {
		// Already written, keep the first copy untouched.
		return nil
	}

	for _, ref := range rec.Refs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO refs
			(run_token, seq, collection, idx, field, target, target_idx)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			rec.RunToken,
			rec.Seq,
			ref.Collection,
			ref.Index,
			ref.Field,
			ref.Target,
			ref.TargetIndex,
		); err != nil {
			return fmt.Errorf("write ref %s[%d].%s: %w", ref.Collection, ref.Index, ref.Field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write event: commit: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
