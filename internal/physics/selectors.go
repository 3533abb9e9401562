package physics

import (
	"math"

	"github.com/roach88/pandafill/internal/ir"
)

// Selectors evaluates muon identification working points. Tight and soft
// are defined with respect to a primary vertex; callers never pass nil.
type Selectors interface {
	IsLoose(m *ir.Muon) bool
	IsMedium(m *ir.Muon) bool
	IsTight(m *ir.Muon, pv *ir.Vertex) bool
	IsSoft(m *ir.Muon, pv *ir.Vertex) bool
}

// StandardSelectors implements the Run 2 muon POG working points.
type StandardSelectors struct{}

var _ Selectors = StandardSelectors{}

func (StandardSelectors) IsLoose(m *ir.Muon) bool {
	return m.PF && (m.Global || m.Tracker)
}

func (s StandardSelectors) IsMedium(m *ir.Muon) bool {
	if !s.IsLoose(m) || m.InnerTrack == nil || m.InnerTrack.ValidFraction <= 0.8 {
		return false
	}
	return goodGlobal(m) && m.SegmentCompatibility > 0.303 || m.SegmentCompatibility > 0.451
}

// MediumBtoF is the medium working point with the relaxed inner track
// requirement used for 2016 runs B to F.
func MediumBtoF(loose bool, m *ir.Muon) bool {
	if !loose || m.InnerTrack == nil || m.InnerTrack.ValidFraction <= 0.49 {
		return false
	}
	return goodGlobal(m) && m.SegmentCompatibility > 0.303 || m.SegmentCompatibility > 0.451
}

func goodGlobal(m *ir.Muon) bool {
	return m.Global && m.GlobalTrack != nil &&
		m.GlobalTrack.NormalizedChi2 < 3 &&
		m.Quality.Chi2LocalPosition < 12 &&
		m.Quality.TrkKink < 20
}

func (StandardSelectors) IsTight(m *ir.Muon, pv *ir.Vertex) bool {
	if !m.Global || !m.PF || m.GlobalTrack == nil || m.InnerTrack == nil || m.BestTrack == nil {
		return false
	}
	return m.GlobalTrack.NormalizedChi2 < 10 &&
		m.GlobalTrack.Hits.ValidMuonHits > 0 &&
		m.MatchedStations > 1 &&
		math.Abs(DXY(m.BestTrack, pv.Position)) < 0.2 &&
		math.Abs(DZ(m.BestTrack, pv.Position)) < 0.5 &&
		m.InnerTrack.Hits.ValidPixelHits > 0 &&
		m.InnerTrack.Hits.TrackerLayersWithMeasurement > 5
}

func (StandardSelectors) IsSoft(m *ir.Muon, pv *ir.Vertex) bool {
	if !m.Tracker || !m.OneStationTight || m.InnerTrack == nil {
		return false
	}
	trk := m.InnerTrack
	return trk.Hits.TrackerLayersWithMeasurement > 5 &&
		trk.Hits.PixelLayersWithMeasurement > 0 &&
		trk.HighPurity &&
		math.Abs(DXY(trk, pv.Position)) < 0.3 &&
		math.Abs(DZ(trk, pv.Position)) < 20
}
