package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/pandafill/internal/filler"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/panda"
	"github.com/roach88/pandafill/internal/testutil"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// realDataFillers are the fillers of a real-data run without trigger
// matching.
var realDataFillers = []string{filler.NameVertices, filler.NamePFCandidates, filler.NameMuons}

func newProcessor(t *testing.T, opts filler.Options, names ...string) *Processor {
	t.Helper()
	opts.Logger = testLogger(t)
	fillers, err := filler.NewAll(names, opts)
	require.NoError(t, err)
	return NewProcessor(fillers, testLogger(t))
}

func realDataProcessor(t *testing.T) *Processor {
	return newProcessor(t, filler.Options{IsRealData: true}, realDataFillers...)
}

// twoMuonEvent is a real-data event with two well-identified muons.
func twoMuonEvent(n uint64) *ir.Event {
	return testutil.Event(n,
		testutil.RecoMuon(25, 0.5, 1.0, 0),
		testutil.RecoMuon(40, -0.3, -2.0, 1),
	)
}

// brokenEvent has a muon without a best track.
func brokenEvent(n uint64) *ir.Event {
	ev := testutil.Event(n, testutil.RecoMuon(30, 0, 0, 0))
	ev.Muons[0].BestTrack = nil
	return ev
}

// panicFiller panics in the configured pass.
type panicFiller struct {
	inFill bool
}

func (f *panicFiller) Name() string { return "panicky" }

func (f *panicFiller) Fill(*filler.EventContext) error {
	if f.inFill {
		panic("boom")
	}
	return nil
}

func (f *panicFiller) SetRefs(*filler.EventContext) error {
	panic("boom")
}

func (f *panicFiller) BranchNames(_, _ *panda.BranchList) {}
