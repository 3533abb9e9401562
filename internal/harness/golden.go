package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pandafill/internal/ir"
)

// Snapshot captures the stored outcome of a scenario run.
// It is serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string          `json:"scenario_name"`
	RunToken     string          `json:"run_token"`
	Events       []SnapshotEvent `json:"events"`
}

// SnapshotEvent is one stored event of a Snapshot.
type SnapshotEvent struct {
	Seq        int64           `json:"seq"`
	Event      string          `json:"event"`
	Status     ir.EventStatus  `json:"status"`
	ErrorCode  string          `json:"error_code,omitempty"`
	OutputHash string          `json:"output_hash,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	Refs       []ir.RefRecord  `json:"refs,omitempty"`
}

// NewSnapshot builds the snapshot of a scenario result.
func NewSnapshot(scenario *Scenario, result *Result) *Snapshot {
	s := &Snapshot{
		ScenarioName: scenario.Name,
		Events:       make([]SnapshotEvent, len(result.Records)),
	}
	for i, rec := range result.Records {
		s.RunToken = rec.RunToken
		s.Events[i] = SnapshotEvent{
			Seq:        rec.Seq,
			Event:      rec.ID.String(),
			Status:     rec.Status,
			ErrorCode:  rec.ErrorCode,
			OutputHash: rec.OutputHash,
			Output:     json.RawMessage(rec.Output),
			Refs:       rec.Refs,
		}
	}
	return s
}

// JSON returns the canonical JSON of the snapshot.
func (s *Snapshot) JSON() ([]byte, error) {
	return ir.MarshalCanonical(s)
}

// GoldenPath returns the golden file of a scenario file:
// <dir>/golden/<name>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes data as the golden file at path.
func UpdateGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the golden file at path holds data.
// A missing golden file is reported as an error wrapping os.ErrNotExist.
func CompareGolden(path string, data []byte) (bool, error) {
	golden, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("golden file %s: %w", path, os.ErrNotExist)
		}
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(golden), bytes.TrimSpace(data)), nil
}

// AssertGolden compares the snapshot of an existing result against the
// golden file of the scenario in fixtureDir.
func AssertGolden(t *testing.T, fixtureDir string, scenario *Scenario, result *Result) {
	t.Helper()

	data, err := NewSnapshot(scenario, result).JSON()
	if err != nil {
		t.Fatalf("snapshot %s: %v", scenario.Name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
