package filler

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
)

// Filler names. Each is also the key the filler publishes its maps under.
const (
	NameVertices     = "vertices"
	NamePFCandidates = "pfCandidates"
	NameGenParticles = "genParticles"
	NameHLT          = "hlt"
	NameMuons        = "muons"
)

// DefaultOrder is the filler order used when none is configured.
var DefaultOrder = []string{NameVertices, NamePFCandidates, NameGenParticles, NameHLT, NameMuons}

// Constructor builds a filler from options.
type Constructor func(opts Options) (Filler, error)

var constructors = map[string]Constructor{
	NameVertices:     func(o Options) (Filler, error) { return NewVertices(o), nil },
	NamePFCandidates: func(o Options) (Filler, error) { return NewPFCandidates(o), nil },
	NameGenParticles: func(o Options) (Filler, error) { return NewGenParticles(o), nil },
	NameHLT:          func(o Options) (Filler, error) { return NewHLT(o), nil },
	NameMuons:        func(o Options) (Filler, error) { return NewMuons(o) },
}

// Dependencies lists, per filler, the fillers whose maps its pass 2 reads
// under the given options.
func Dependencies(name string, opts Options) []string {
	switch name {
	case NamePFCandidates:
		return []string{NameVertices}
	case NameMuons:
		deps := []string{NamePFCandidates, NameVertices}
		if !opts.IsRealData {
			deps = append(deps, NameGenParticles)
		}
		if opts.UseTrigger {
			deps = append(deps, NameHLT)
		}
		return deps
	default:
		return nil
	}
}

// Known returns the names of every filler in natural order.
func Known() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// New creates the named filler.
func New(name string, opts Options) (Filler, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown filler %q (known: %v)", name, Known())
	}
	f, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("create filler %q: %w", name, err)
	}
	return f, nil
}

// NewAll creates fillers in the given order.
func NewAll(names []string, opts Options) ([]Filler, error) {
	fillers := make([]Filler, 0, len(names))
	for _, name := range names {
		f, err := New(name, opts)
		if err != nil {
			return nil, err
		}
		fillers = append(fillers, f)
	}
	return fillers, nil
}
