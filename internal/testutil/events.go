package testutil

import "github.com/roach88/pandafill/internal/ir"

// IsoMu24Filter is a filter name that qualifies for the IsoMu24 category.
const IsoMu24Filter = "hltL3crIsoL1sMu22L1f0L2f10QL3f24QL3trkIsoFiltered0p09"

// Track is a high-quality track of transverse momentum pt.
func Track(pt float64) *ir.Track {
	return &ir.Track{
		Momentum:      ir.Vector{X: pt, Z: pt / 2},
		ValidFraction: 0.95,
		HighPurity:    true,
		Hits: ir.HitPattern{
			TrackerLayersWithMeasurement: 10,
			PixelLayersWithMeasurement:   3,
			ValidPixelHits:               4,
			ValidMuonHits:                10,
		},
	}
}

// RecoMuon is a well-identified reco muon built from packed candidate pf.
func RecoMuon(pt, eta, phi float64, pf int) ir.Muon {
	inner := Track(pt)
	global := Track(pt)
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

// PatMuon is RecoMuon with an embedded pat payload, matched to generator
// particle gen unless gen is negative.
func PatMuon(pt, eta, phi float64, pf, gen int) ir.Muon {
	m := RecoMuon(pt, eta, phi, pf)
	m.Variant = ir.MuonVariantPat
	m.Pat = &ir.PatInfo{Loose: true, Medium: true, DB: 0.002}
	if gen >= 0 {
		m.Pat.GenParticle = ir.NewPtr[ir.Candidate](ir.ProductGenParticles, gen)
	}
	return m
}

// Event builds an event numbered n with one vertex and one packed candidate
// per muon, each candidate carrying the muon's kinematics and associated
// with the vertex.
func Event(n uint64, muons ...ir.Muon) *ir.Event {
	ev := &ir.Event{
		EventID:  ir.EventID{Run: 1, Lumi: 1, Number: n},
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

// TriggerObject is an online object at (eta, phi) that passed filters.
func TriggerObject(pt, eta, phi float64, filters ...string) ir.TriggerObject {
	return ir.TriggerObject{
		P4:           ir.P4{Pt: pt, Eta: eta, Phi: phi},
		FilterLabels: filters,
	}
}
