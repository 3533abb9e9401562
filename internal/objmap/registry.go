package objmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// MissingMapKeyError reports a map that pass 2 needs but no filler
// published: the producing filler is not configured, or it did not register
// the expected (source, destination, tag) map.
type MissingMapKeyError struct {
	Name      string
	Key       string
	Available []string
}

func (e *MissingMapKeyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "object map %q", e.Name)
	if e.Key != "" {
		fmt.Fprintf(&b, " has no map %s", e.Key)
	} else {
		b.WriteString(" was never published")
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available: %s)", strings.Join(e.Available, ", "))
	}
	return b.String()
}

// Registry holds every filler's store for one event, keyed by filler name.
type Registry struct {
	stores map[string]*Store
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Store returns the store owned by the named filler, creating it if absent.
// Panics after Freeze.
func (r *Registry) Store(name string) *Store {
	if s, ok := r.stores[name]; ok {
		return s
	}
	if r.frozen {
		panic(fmt.Sprintf("objmap: store %q created after freeze", name))
	}
	s := NewStore()
	r.stores[name] = s
	return s
}

// At returns the store published under name.
func (r *Registry) At(name string) (*Store, error) {
	s, ok := r.stores[name]
	if !ok {
		return nil, &MissingMapKeyError{Name: name, Available: r.Names()}
	}
	return s, nil
}

// Names returns the published store names in natural order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Freeze makes every store read-only. Called by the host between pass 1 and
// pass 2.
func (r *Registry) Freeze() {
	r.frozen = true
	for _, s := range r.stores {
		s.Freeze()
	}
}

// Frozen reports whether pass 1 is over.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Published returns the (S, D, tag) map published by the named filler.
// A missing store or map is a MissingMapKeyError.
func Published[S comparable, D any](r *Registry, name, tag string) (*ObjectMap[S, D], error) {
	s, err := r.At(name)
	if err != nil {
		return nil, err
	}
	m, ok := Lookup[S, D](s, tag)
	if !ok {
		available := make([]string, 0, len(s.keys))
		for _, k := range s.keys {
			available = append(available, k.String())
		}
		return nil, &MissingMapKeyError{Name: name, Key: KeyFor[S, D](tag).String(), Available: available}
	}
	return m, nil
}
