package panda

import (
	"slices"

	"github.com/roach88/pandafill/internal/physics"
)

// Particle is the kinematic block shared by particle-like records.
type Particle struct {
	Pt   float64 `json:"pt"`
	Eta  float64 `json:"eta"`
	Phi  float64 `json:"phi"`
	Mass float64 `json:"mass"`
}

// Kinematics returns the particle block of a record.
func (p *Particle) Kinematics() *Particle {
	return p
}

// Kinematic is implemented by every record embedding Particle.
type Kinematic interface {
	Kinematics() *Particle
}

// PtGreater orders records by descending transverse momentum.
func PtGreater[T Kinematic](a, b T) bool {
	return a.Kinematics().Pt > b.Kinematics().Pt
}

// Muon is the output record of a reconstructed muon.
type Muon struct {
	Particle
	Charge int `json:"charge"`

	Global  bool `json:"global"`
	Tracker bool `json:"tracker"`
	PF      bool `json:"pf"`

	Loose      bool `json:"loose"`
	Medium     bool `json:"medium"`
	MediumBtoF bool `json:"mediumBtoF"`
	Tight      bool `json:"tight"`
	Soft       bool `json:"soft"`
	Hltsafe    bool `json:"hltsafe"`

	ChIso  float64 `json:"chIso"`
	NhIso  float64 `json:"nhIso"`
	PhIso  float64 `json:"phIso"`
	PuIso  float64 `json:"puIso"`
	R03Iso float64 `json:"r03Iso"`

	ValidFraction        float64 `json:"validFraction"`
	TrkLayersWithMmt     int     `json:"trkLayersWithMmt"`
	PixLayersWithMmt     int     `json:"pixLayersWithMmt"`
	NValidPixel          int     `json:"nValidPixel"`
	NormChi2             float64 `json:"normChi2"`
	NValidMuon           int     `json:"nValidMuon"`
	NMatched             int     `json:"nMatched"`
	Chi2LocalPosition    float64 `json:"chi2LocalPosition"`
	TrkKink              float64 `json:"trkKink"`
	SegmentCompatibility float64 `json:"segmentCompatibility"`

	Dxy  float64 `json:"dxy"`
	Dz   float64 `json:"dz"`
	PFPt float64 `json:"pfPt"`

	TriggerMatch [NTriggerObjects]bool `json:"triggerMatch"`

	MatchedPF  Ref[PFCand]      `json:"matchedPF_"`
	Vertex     Ref[RecoVertex]  `json:"vertex_"`
	MatchedGen Ref[GenParticle] `json:"matchedGen_"`
}

// CombIso is the pileup-corrected combined isolation sum.
func (m *Muon) CombIso() float64 {
	return physics.CombIso(m.ChIso, m.NhIso, m.PhIso, m.PuIso)
}

// PFCand is a packed particle-flow candidate.
type PFCand struct {
	Particle
	PdgID  int             `json:"pdgid"`
	Charge int             `json:"q"`
	Vertex Ref[RecoVertex] `json:"vertex_"`
}

// RecoVertex is a primary vertex.
type RecoVertex struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Ndof    float64 `json:"ndof"`
	Chi2    float64 `json:"chi2"`
	NTracks int     `json:"ntrk"`
}

// GenParticle is a generator-level particle.
type GenParticle struct {
	Particle
	PdgID  int `json:"pdgid"`
	Status int `json:"status"`
}

// FilterList is the list of online filter names a trigger object passed.
type FilterList []string

// Contains reports whether the list holds name.
func (l FilterList) Contains(name string) bool {
	return slices.Contains(l, name)
}

// TriggerObject is an online object with the filters it passed.
type TriggerObject struct {
	Particle
	Filters FilterList `json:"filters"`
}
