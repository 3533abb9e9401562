// Package filler implements the per-entity fillers and the two-pass
// object-mapping protocol they follow.
//
// For every event the host calls Fill on every configured filler, freezes the
// object map registry, then calls SetRefs on every filler. Fill builds output
// records and publishes identity links into the filler's own object map
// store; it never reads another filler's maps. SetRefs reads the maps every
// filler published and turns local links into output references.
package filler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
	"github.com/roach88/pandafill/internal/physics"
)

// Filler populates one output entity kind for one event.
type Filler interface {
	// Name is the key the filler's object maps are published under.
	Name() string

	// Fill is pass 1.
	Fill(ec *EventContext) error

	// SetRefs is pass 2.
	SetRefs(ec *EventContext) error

	// BranchNames declares the output branches the filler writes for the
	// configured run mode.
	BranchNames(events, runs *panda.BranchList)
}

// Documenter is implemented by fillers that describe indexed array branches.
type Documenter interface {
	DocTrees() []panda.DocTree
}

// EventContext is the per-event state passed to every filler call.
// It is created by the host for one event and discarded afterwards.
type EventContext struct {
	Input    *ir.Event
	Output   *panda.Event
	Registry *objmap.Registry
}

// NewEventContext creates the context for one event.
func NewEventContext(in *ir.Event) *EventContext {
	out := panda.NewEvent()
	out.RunNumber = in.Run
	out.LumiNumber = in.Lumi
	out.EventNumber = in.Number
	return &EventContext{
		Input:    in,
		Output:   out,
		Registry: objmap.NewRegistry(),
	}
}

// Maps returns the object map store owned by the named filler.
func (ec *EventContext) Maps(name string) *objmap.Store {
	return ec.Registry.Store(name)
}

// Published returns a map another filler published. Only valid in pass 2.
func Published[S comparable, D any](ec *EventContext, name, tag string) (*objmap.ObjectMap[S, D], error) {
	if !ec.Registry.Frozen() {
		return nil, fmt.Errorf("map %q read before pass 1 completed", name)
	}
	return objmap.Published[S, D](ec.Registry, name, tag)
}

// Options configures fillers. Shared by every filler of a run.
type Options struct {
	// IsRealData disables everything generator-level.
	IsRealData bool

	// UseTrigger enables trigger object matching.
	UseTrigger bool

	// TriggerObjects maps a muon trigger category key to its qualifying
	// filter names.
	TriggerObjects map[string][]string

	Selectors physics.Selectors
	Logger    *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) selectors() physics.Selectors {
	if o.Selectors == nil {
		return physics.StandardSelectors{}
	}
	return o.Selectors
}
