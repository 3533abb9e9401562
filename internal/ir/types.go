package ir

import "fmt"

// P4 is the kinematic part shared by every particle-like record.
type P4 struct {
	Pt   float64 `yaml:"pt" json:"pt"`
	Eta  float64 `yaml:"eta" json:"eta"`
	Phi  float64 `yaml:"phi" json:"phi"`
	Mass float64 `yaml:"mass" json:"mass"`
}

// Point is a position in detector coordinates (cm).
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Vector is a momentum three-vector (GeV).
type Vector struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// HitPattern summarises the hits attached to a track.
type HitPattern struct {
	TrackerLayersWithMeasurement int `yaml:"tracker_layers" json:"tracker_layers"`
	PixelLayersWithMeasurement   int `yaml:"pixel_layers" json:"pixel_layers"`
	ValidPixelHits               int `yaml:"valid_pixel_hits" json:"valid_pixel_hits"`
	ValidMuonHits                int `yaml:"valid_muon_hits" json:"valid_muon_hits"`
}

// Track is a reconstructed track.
type Track struct {
	// Reference is the point of closest approach the helix is expressed at.
	Reference      Point      `yaml:"reference" json:"reference"`
	Momentum       Vector     `yaml:"momentum" json:"momentum"`
	ValidFraction  float64    `yaml:"valid_fraction" json:"valid_fraction"`
	NormalizedChi2 float64    `yaml:"norm_chi2" json:"norm_chi2"`
	HighPurity     bool       `yaml:"high_purity" json:"high_purity"`
	Hits           HitPattern `yaml:"hits" json:"hits"`
}

// CombinedQuality holds the muon-system/tracker matching quality.
type CombinedQuality struct {
	Chi2LocalPosition float64 `yaml:"chi2_local_position" json:"chi2_local_position"`
	TrkKink           float64 `yaml:"trk_kink" json:"trk_kink"`
}

// PFIsolation holds particle-flow isolation sums in a cone.
type PFIsolation struct {
	SumChargedHadronPt float64 `yaml:"charged_hadron_pt" json:"charged_hadron_pt"`
	SumNeutralHadronEt float64 `yaml:"neutral_hadron_et" json:"neutral_hadron_et"`
	SumPhotonEt        float64 `yaml:"photon_et" json:"photon_et"`
	SumPUPt            float64 `yaml:"pu_pt" json:"pu_pt"`
}

// MuonVariant tags which identification capability set a muon carries.
type MuonVariant string

const (
	// MuonVariantReco is a plain reconstructed muon; identification is
	// computed from its tracks.
	MuonVariantReco MuonVariant = "reco"

	// MuonVariantPat is an analysis-level muon carrying embedded
	// identification results, impact parameter and generator match.
	MuonVariantPat MuonVariant = "pat"
)

// PatInfo is the extended payload of a pat muon.
type PatInfo struct {
	Loose       bool           `yaml:"loose" json:"loose"`
	Medium      bool           `yaml:"medium" json:"medium"`
	DB          float64        `yaml:"db" json:"db"`
	GenParticle Ptr[Candidate] `yaml:"gen_particle" json:"gen_particle"`
}

// Muon is a reconstructed muon candidate.
type Muon struct {
	P4     `yaml:",inline"`
	Charge int `yaml:"charge" json:"charge"`

	Global  bool `yaml:"global" json:"global"`
	Tracker bool `yaml:"tracker" json:"tracker"`
	PF      bool `yaml:"pf" json:"pf"`

	InnerTrack  *Track `yaml:"inner_track,omitempty" json:"inner_track,omitempty"`
	GlobalTrack *Track `yaml:"global_track,omitempty" json:"global_track,omitempty"`
	BestTrack   *Track `yaml:"best_track,omitempty" json:"best_track,omitempty"`

	MatchedStations      int             `yaml:"matched_stations" json:"matched_stations"`
	OneStationTight      bool            `yaml:"one_station_tight" json:"one_station_tight"`
	Quality              CombinedQuality `yaml:"quality" json:"quality"`
	SegmentCompatibility float64         `yaml:"segment_compatibility" json:"segment_compatibility"`

	PFIsoR04    PFIsolation `yaml:"pf_iso_r04" json:"pf_iso_r04"`
	TrackIsoR03 float64     `yaml:"track_iso_r03" json:"track_iso_r03"`
	PFPt        float64     `yaml:"pf_pt" json:"pf_pt"`

	// Source is the particle-flow candidate the muon was built from.
	Source Ptr[Candidate] `yaml:"source" json:"source"`

	Variant MuonVariant `yaml:"variant" json:"variant"`
	Pat     *PatInfo    `yaml:"pat,omitempty" json:"pat,omitempty"`
}

// Candidate is a particle candidate: either a packed particle-flow candidate
// or a generator-level particle.
type Candidate struct {
	P4     `yaml:",inline"`
	Charge int `yaml:"charge" json:"charge"`
	PdgID  int `yaml:"pdg_id" json:"pdg_id"`
	Status int `yaml:"status,omitempty" json:"status,omitempty"`

	// Vertex is set on packed candidates associated with a primary vertex.
	Vertex Ptr[Vertex] `yaml:"vertex,omitempty" json:"vertex,omitempty"`
}

// Vertex is a reconstructed primary vertex.
type Vertex struct {
	Position Point   `yaml:"position" json:"position"`
	Ndof     float64 `yaml:"ndof" json:"ndof"`
	Chi2     float64 `yaml:"chi2" json:"chi2"`
	NTracks  int     `yaml:"ntracks" json:"ntracks"`
}

// TriggerObject is an online object with the names of the filters it passed.
type TriggerObject struct {
	P4           `yaml:",inline"`
	FilterLabels []string `yaml:"filters" json:"filters"`
}

// EventID identifies a collision event.
type EventID struct {
	Run    uint64 `yaml:"run" json:"run"`
	Lumi   uint64 `yaml:"lumi" json:"lumi"`
	Number uint64 `yaml:"event" json:"event"`
}

func (id EventID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Run, id.Lumi, id.Number)
}
