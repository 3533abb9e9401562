// Package objmap holds the event-scoped identity maps fillers publish in
// pass 1 and read in pass 2.
//
// An ObjectMap associates input object identities (S) with the output
// records (*D) created for them. A Store keys maps by (S, D, tag) and belongs
// to one filler; the Registry collects every filler's store for one event.
// All three are created fresh per event and never outlive it.
package objmap

import (
	"fmt"
	"iter"
)

// ObjectMap is a bidirectional association between source identities and
// destination records. Forward and backward directions are updated together
// on every Add; in each direction the first association wins.
//
// Iteration follows insertion order so that traversals are reproducible.
type ObjectMap[S comparable, D any] struct {
	fwd      map[S]*D
	bwd      map[*D]S
	fwdOrder []S
	bwdOrder []*D
	frozen   bool
}

// New creates an empty map.
func New[S comparable, D any]() *ObjectMap[S, D] {
	return &ObjectMap[S, D]{
		fwd: make(map[S]*D),
		bwd: make(map[*D]S),
	}
}

// Add associates src with dst in both directions.
// Panics when the map is frozen: only the owning filler writes, and only in
// pass 1.
func (m *ObjectMap[S, D]) Add(src S, dst *D) {
	if m.frozen {
		panic(fmt.Sprintf("objmap: Add on frozen map %T", m))
	}
	if _, ok := m.fwd[src]; !ok {
		m.fwd[src] = dst
		m.fwdOrder = append(m.fwdOrder, src)
	}
	if _, ok := m.bwd[dst]; !ok {
		m.bwd[dst] = src
		m.bwdOrder = append(m.bwdOrder, dst)
	}
}

// Forward returns the record associated with src.
func (m *ObjectMap[S, D]) Forward(src S) (*D, bool) {
	dst, ok := m.fwd[src]
	return dst, ok
}

// Backward returns the source associated with dst.
func (m *ObjectMap[S, D]) Backward(dst *D) (S, bool) {
	src, ok := m.bwd[dst]
	return src, ok
}

// Len returns the number of distinct sources.
func (m *ObjectMap[S, D]) Len() int {
	return len(m.fwd)
}

// FwdLinks iterates over (source, record) pairs in the order sources were
// first added.
func (m *ObjectMap[S, D]) FwdLinks() iter.Seq2[S, *D] {
	return func(yield func(S, *D) bool) {
		for _, src := range m.fwdOrder {
			if !yield(src, m.fwd[src]) {
				return
			}
		}
	}
}

// BwdLinks iterates over (record, source) pairs in the order records were
// first added.
func (m *ObjectMap[S, D]) BwdLinks() iter.Seq2[*D, S] {
	return func(yield func(*D, S) bool) {
		for _, dst := range m.bwdOrder {
			if !yield(dst, m.bwd[dst]) {
				return
			}
		}
	}
}

// Freeze makes the map read-only.
func (m *ObjectMap[S, D]) Freeze() {
	m.frozen = true
}

// Frozen reports whether the map is read-only.
func (m *ObjectMap[S, D]) Frozen() bool {
	return m.frozen
}
