package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pandafill/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with minimal required fields.
func createTestRun(token string, firstSeq int64) ir.RunRecord {
	return ir.RunRecord{
		Token:         token,
		Config:        `{"fillers":["muons"]}`,
		ConfigHash:    "config-hash",
		Fillers:       []string{"vertices", "muons"},
		Branches:      []string{"muons", "!muons.matchedGen_"},
		IsRealData:    true,
		SchemaVersion: ir.SchemaVersion,
		EngineVersion: ir.EngineVersion,
		FirstSeq:      firstSeq,
	}
}

// createTestEvent creates an ok event record with minimal required fields.
func createTestEvent(runToken string, seq int64, number uint64) ir.EventRecord {
	return ir.EventRecord{
		RunToken:   runToken,
		Seq:        seq,
		ID:         ir.EventID{Run: 1, Lumi: 2, Number: number},
		Input:      `{"event":1,"lumi":2,"run":1}`,
		InputHash:  "input-hash",
		Output:     `{"muons":[]}`,
		OutputHash: "output-hash",
		Status:     ir.StatusOK,
	}
}

// writeTestRun writes a run and fails the test on error.
func writeTestRun(t *testing.T, s *Store, run ir.RunRecord) {
	t.Helper()
	require.NoError(t, s.WriteRun(context.Background(), run))
}
