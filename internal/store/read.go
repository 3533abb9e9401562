package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pandafill/internal/ir"
)

// ErrNotFound is returned when a requested run or event does not exist.
var ErrNotFound = errors.New("not found")

const runColumns = `token, config, config_hash, fillers, branches, is_real_data, use_trigger,
	schema_version, engine_version, first_seq`

const eventColumns = `run_token, seq, run, lumi, event, input, input_hash, output, output_hash,
	status, error_code, error`

// ReadRun retrieves a run by token.
// Returns ErrNotFound (wrapped) if no run has that token.
func (s *Store) ReadRun(ctx context.Context, token string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE token = ?`, token)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("read run %q: %w", token, ErrNotFound)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run %q: %w", token, err)
	}
	return run, nil
}

// LatestRun returns the run that started last, by logical clock.
// Ties (runs that wrote no events) are broken by token.
func (s *Store) LatestRun(ctx context.Context) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY first_seq DESC, token DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs ordered by the clock value they started at.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY first_seq ASC, token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns every event of a run ordered by seq, with refs attached.
func (s *Store) ReadEvents(ctx context.Context, runToken string) ([]ir.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE run_token = ?
		ORDER BY seq ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	events := []ir.EventRecord{}
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	// Release the single connection before querying refs.
	rows.Close()

	refs, err := s.refsByRun(ctx, runToken)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Refs = refs[events[i].Seq]
	}
	return events, nil
}

// ReadEvent retrieves one event of a run by seq.
func (s *Store) ReadEvent(ctx context.Context, runToken string, seq int64) (ir.EventRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE run_token = ? AND seq = ?
	`, runToken, seq)
	rec, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.EventRecord{}, fmt.Errorf("read event %s/%d: %w", runToken, seq, ErrNotFound)
	}
	if err != nil {
		return ir.EventRecord{}, fmt.Errorf("read event %s/%d: %w", runToken, seq, err)
	}

	refs, err := s.ReadRefs(ctx, runToken, seq)
	if err != nil {
		return ir.EventRecord{}, err
	}
	rec.Refs = refs
	return rec, nil
}

// FindEvents returns every stored copy of the event with the given
// identifier, across runs, ordered by seq.
func (s *Store) FindEvents(ctx context.Context, id ir.EventID) ([]ir.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE run = ? AND lumi = ? AND event = ?
		ORDER BY seq ASC
	`, int64(id.Run), int64(id.Lumi), int64(id.Number))
	if err != nil {
		return nil, fmt.Errorf("find events %s: %w", id, err)
	}
	defer rows.Close()

	events := []ir.EventRecord{}
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("find events %s: %w", id, err)
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadRefs returns the refs of one event in (collection, idx, field) order.
func (s *Store) ReadRefs(ctx context.Context, runToken string, seq int64) ([]ir.RefRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, idx, field, target, target_idx FROM refs
		WHERE run_token = ? AND seq = ?
		ORDER BY collection ASC, idx ASC, field ASC
	`, runToken, seq)
	if err != nil {
		return nil, fmt.Errorf("read refs: %w", err)
	}
	defer rows.Close()

	var refs []ir.RefRecord
	for rows.Next() {
		var ref ir.RefRecord
		if err := rows.Scan(&ref.Collection, &ref.Index, &ref.Field, &ref.Target, &ref.TargetIndex); err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refs: %w", err)
	}
	return refs, nil
}

func (s *Store) refsByRun(ctx context.Context, runToken string) (map[int64][]ir.RefRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, collection, idx, field, target, target_idx FROM refs
		WHERE run_token = ?
		ORDER BY seq ASC, collection ASC, idx ASC, field ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read refs: %w", err)
	}
	defer rows.Close()

	refs := make(map[int64][]ir.RefRecord)
	for rows.Next() {
		var seq int64
		var ref ir.RefRecord
		if err := rows.Scan(&seq, &ref.Collection, &ref.Index, &ref.Field, &ref.Target, &ref.TargetIndex); err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}
		refs[seq] = append(refs[seq], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refs: %w", err)
	}
	return refs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	var fillersJSON, branchesJSON string
	var isRealData, useTrigger int

	if err := row.Scan(
		&run.Token, &run.Config, &run.ConfigHash, &fillersJSON, &branchesJSON,
		&isRealData, &useTrigger, &run.SchemaVersion, &run.EngineVersion, &run.FirstSeq,
	); err != nil {
		return ir.RunRecord{}, err
	}

	fillers, err := unmarshalStrings(fillersJSON)
	if err != nil {
		return ir.RunRecord{}, err
	}
	branches, err := unmarshalStrings(branchesJSON)
	if err != nil {
		return ir.RunRecord{}, err
	}
	run.Fillers = fillers
	run.Branches = branches
	run.IsRealData = isRealData != 0
	run.UseTrigger = useTrigger != 0
	return run, nil
}

func scanEvent(row scanner) (ir.EventRecord, error) {
	var rec ir.EventRecord
	var run, lumi, event int64
	var status string
	var output, outputHash, errorCode, errText sql.NullString

	if err := row.Scan(
		&rec.RunToken, &rec.Seq, &run, &lumi, &event, &rec.Input, &rec.InputHash,
		&output, &outputHash, &status, &errorCode, &errText,
	); err != nil {
		return ir.EventRecord{}, err
	}

	rec.ID = ir.EventID{Run: uint64(run), Lumi: uint64(lumi), Number: uint64(event)}
	rec.Output = output.String
	rec.OutputHash = outputHash.String
	rec.Status = ir.EventStatus(status)
	rec.ErrorCode = errorCode.String
	rec.Error = errText.String
	return rec, nil
}
