package panda

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event holds every output collection of one event.
type Event struct {
	RunNumber   uint64 `json:"runNumber"`
	LumiNumber  uint64 `json:"lumiNumber"`
	EventNumber uint64 `json:"eventNumber"`

	Muons          *Collection[Muon]          `json:"muons"`
	PFCandidates   *Collection[PFCand]        `json:"pfCandidates"`
	Vertices       *Collection[RecoVertex]    `json:"vertices"`
	GenParticles   *Collection[GenParticle]   `json:"genParticles"`
	TriggerObjects *Collection[TriggerObject] `json:"triggerObjects"`
}

// NewEvent creates an event with empty collections.
func NewEvent() *Event {
	return &Event{
		Muons:          NewCollection[Muon](),
		PFCandidates:   NewCollection[PFCand](),
		Vertices:       NewCollection[RecoVertex](),
		GenParticles:   NewCollection[GenParticle](),
		TriggerObjects: NewCollection[TriggerObject](),
	}
}

// Document renders the event as a generic JSON document restricted to the
// declared branches. Collections and fields the branch list excludes are
// absent from the document, not present with zero values.
func (e *Event) Document(branches BranchList) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal output event: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal output event: %w", err)
	}
	branches.Filter(doc)
	return doc, nil
}
