package ir

// Event is one recorded collision as supplied by the host: the input
// collections every filler reads from.
//
// An Event is read-only for the duration of its processing. Collections the
// event lacks are simply empty.
type Event struct {
	EventID `yaml:",inline"`

	Muons          []Muon          `yaml:"muons,omitempty" json:"muons,omitempty"`
	Vertices       []Vertex        `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	PFCandidates   []Candidate     `yaml:"pf_candidates,omitempty" json:"pf_candidates,omitempty"`
	GenParticles   []Candidate     `yaml:"gen_particles,omitempty" json:"gen_particles,omitempty"`
	TriggerObjects []TriggerObject `yaml:"trigger_objects,omitempty" json:"trigger_objects,omitempty"`
}

// MuonPtr returns the identity of the i-th muon.
func (e *Event) MuonPtr(i int) Ptr[Muon] {
	return NewPtr[Muon](ProductMuons, i)
}

// VertexPtr returns the identity of the i-th primary vertex.
func (e *Event) VertexPtr(i int) Ptr[Vertex] {
	return NewPtr[Vertex](ProductVertices, i)
}

// PFCandidatePtr returns the identity of the i-th packed PF candidate.
func (e *Event) PFCandidatePtr(i int) Ptr[Candidate] {
	return NewPtr[Candidate](ProductPFCandidates, i)
}

// GenParticlePtr returns the identity of the i-th generator particle.
func (e *Event) GenParticlePtr(i int) Ptr[Candidate] {
	return NewPtr[Candidate](ProductGenParticles, i)
}

// TriggerObjectPtr returns the identity of the i-th trigger object.
func (e *Event) TriggerObjectPtr(i int) Ptr[TriggerObject] {
	return NewPtr[TriggerObject](ProductTriggerObjects, i)
}

// MuonAt resolves a muon identity.
func (e *Event) MuonAt(p Ptr[Muon]) (*Muon, bool) {
	if p.Product != ProductMuons {
		return nil, false
	}
	return at(e.Muons, p.Key)
}

// VertexAt resolves a vertex identity.
func (e *Event) VertexAt(p Ptr[Vertex]) (*Vertex, bool) {
	if p.Product != ProductVertices {
		return nil, false
	}
	return at(e.Vertices, p.Key)
}

// CandidateAt resolves a candidate identity in either candidate product.
// Candidates of products the event does not carry do not resolve.
func (e *Event) CandidateAt(p Ptr[Candidate]) (*Candidate, bool) {
	switch p.Product {
	case ProductPFCandidates:
		return at(e.PFCandidates, p.Key)
	case ProductGenParticles:
		return at(e.GenParticles, p.Key)
	default:
		return nil, false
	}
}

// IsPackedCandidate reports whether p points into the packed PF candidates.
func IsPackedCandidate(p Ptr[Candidate]) bool {
	return p.Product == ProductPFCandidates
}

// TriggerObjectAt resolves a trigger object identity.
func (e *Event) TriggerObjectAt(p Ptr[TriggerObject]) (*TriggerObject, bool) {
	if p.Product != ProductTriggerObjects {
		return nil, false
	}
	return at(e.TriggerObjects, p.Key)
}
