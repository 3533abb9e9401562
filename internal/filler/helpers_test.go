package filler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/pandafill/internal/ir"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// simOptions are options for a simulated run with trigger matching on
// IsoMu24 only.
func simOptions(t *testing.T) Options {
	return Options{
		UseTrigger: true,
		TriggerObjects: map[string][]string{
			"IsoMu24": {"hltL3crIsoL1sMu22L1f0L2f10QL3f24QL3trkIsoFiltered0p09"},
		},
		Logger: testLogger(t),
	}
}

func setupFillers(t *testing.T, opts Options, names ...string) []Filler {
	t.Helper()
	if len(names) == 0 {
		names = DefaultOrder
	}
	fillers, err := NewAll(names, opts)
	require.NoError(t, err)
	return fillers
}

// process runs both passes the way the host does.
func process(fillers []Filler, ev *ir.Event) (*EventContext, error) {
	ec := NewEventContext(ev)
	for _, f := range fillers {
		if err := f.Fill(ec); err != nil {
			return ec, err
		}
	}
	ec.Registry.Freeze()
	for _, f := range fillers {
		if err := f.SetRefs(ec); err != nil {
			return ec, err
		}
	}
	return ec, nil
}

func mustProcess(t *testing.T, fillers []Filler, ev *ir.Event) *EventContext {
	t.Helper()
	ec, err := process(fillers, ev)
	require.NoError(t, err)
	return ec
}

func track(pt float64) *ir.Track {
	return &ir.Track{
		Momentum:      ir.Vector{X: pt, Z: pt / 2},
		ValidFraction: 0.95,
		HighPurity:    true,
		Hits:          ir.HitPattern{TrackerLayersWithMeasurement: 10, PixelLayersWithMeasurement: 3, ValidPixelHits: 4, ValidMuonHits: 10},
	}
}

// recoMuon is a well-identified reco muon built from packed candidate pf.
func recoMuon(pt, eta, phi float64, pf int) ir.Muon {
	inner := track(pt)
	global := track(pt)
	global.NormalizedChi2 = 1.1
	return ir.Muon{
		P4:                   ir.P4{Pt: pt, Eta: eta, Phi: phi, Mass: 0.1057},
		Charge:               -1,
		Global:               true,
		Tracker:              true,
		PF:                   true,
		InnerTrack:           inner,
		GlobalTrack:          global,
		BestTrack:            inner,
		MatchedStations:      2,
		OneStationTight:      true,
		Quality:              ir.CombinedQuality{Chi2LocalPosition: 1, TrkKink: 2},
		SegmentCompatibility: 0.8,
		PFIsoR04:             ir.PFIsolation{SumChargedHadronPt: 0.5},
		TrackIsoR03:          0.2,
		PFPt:                 pt,
		Source:               ir.NewPtr[ir.Candidate](ir.ProductPFCandidates, pf),
		Variant:              ir.MuonVariantReco,
	}
}

// patMuon is recoMuon with an embedded pat payload.
func patMuon(pt, eta, phi float64, pf, gen int) ir.Muon {
	m := recoMuon(pt, eta, phi, pf)
	m.Variant = ir.MuonVariantPat
	m.Pat = &ir.PatInfo{Loose: true, Medium: true, DB: 0.002}
	if gen >= 0 {
		m.Pat.GenParticle = ir.NewPtr[ir.Candidate](ir.ProductGenParticles, gen)
	}
	return m
}

// baseEvent holds one vertex and one PF candidate per muon, each candidate
// carrying the muon's pt and associated with the vertex.
func baseEvent(muons ...ir.Muon) *ir.Event {
	ev := &ir.Event{
		EventID:  ir.EventID{Run: 1, Lumi: 1, Number: 1},
		Muons:    muons,
		Vertices: []ir.Vertex{{Ndof: 50, NTracks: 40}},
	}
	for _, m := range muons {
		ev.PFCandidates = append(ev.PFCandidates, ir.Candidate{
			P4:     m.P4,
			Charge: m.Charge,
			PdgID:  13 * -m.Charge,
			Vertex: ir.NewPtr[ir.Vertex](ir.ProductVertices, 0),
		})
	}
	return ev
}
