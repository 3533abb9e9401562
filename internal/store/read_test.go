package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pandafill/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadEvent_NotFound(t *testing.T) {
	s := createTestStore(t)
	writeTestRun(t, s, createTestRun("run-1", 0))

	_, err := s.ReadEvent(context.Background(), "run-1", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadEvents_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, createTestRun("run-1", 0))

	// Written out of order on purpose.
	for _, seq := range []int64{3, 1, 2} {
		rec := createTestEvent("run-1", seq, uint64(seq*10))
		rec.Refs = []ir.RefRecord{{Collection: "pfCandidates", Index: int(seq), Field: "vertex_", Target: "vertices", TargetIndex: 0}}
		require.NoError(t, s.WriteEvent(ctx, rec))
	}

	events, err := s.ReadEvents(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Seq)
		require.Len(t, ev.Refs, 1)
		assert.Equal(t, i+1, ev.Refs[0].Index)
	}
}

func TestReadEvents_EmptyRun(t *testing.T) {
	s := createTestStore(t)
	writeTestRun(t, s, createTestRun("run-1", 0))

	events, err := s.ReadEvents(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, events)
}

func TestFindEvents_AcrossRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, createTestRun("run-1", 0))
	writeTestRun(t, s, createTestRun("run-2", 5))

	require.NoError(t, s.WriteEvent(ctx, createTestEvent("run-1", 1, 42)))
	require.NoError(t, s.WriteEvent(ctx, createTestEvent("run-1", 2, 43)))
	require.NoError(t, s.WriteEvent(ctx, createTestEvent("run-2", 6, 42)))

	events, err := s.FindEvents(ctx, ir.EventID{Run: 1, Lumi: 2, Number: 42})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "run-1", events[0].RunToken)
	assert.Equal(t, "run-2", events[1].RunToken)
}

func TestListRuns_OrderedByFirstSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, createTestRun("b", 10))
	writeTestRun(t, s, createTestRun("a", 20))
	writeTestRun(t, s, createTestRun("c", 0))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	tokens := make([]string, len(runs))
	for i, r := range runs {
		tokens[i] = r.Token
	}
	assert.Equal(t, []string{"c", "b", "a"}, tokens)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", latest.Token)
}

func TestLatestRun_Empty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
