package objmap

import (
	"fmt"
	"reflect"
)

// Key identifies one map inside a Store.
type Key struct {
	Source      reflect.Type
	Destination reflect.Type
	Tag         string
}

func (k Key) String() string {
	if k.Tag == "" {
		return fmt.Sprintf("%v -> %v", k.Source, k.Destination)
	}
	return fmt.Sprintf("%v -> %v [%s]", k.Source, k.Destination, k.Tag)
}

// KeyFor returns the key of the (S, D, tag) map.
func KeyFor[S comparable, D any](tag string) Key {
	return Key{
		Source:      reflect.TypeFor[S](),
		Destination: reflect.TypeFor[D](),
		Tag:         tag,
	}
}

// Store holds the maps one filler publishes for one event.
type Store struct {
	maps   map[Key]any
	keys   []Key
	frozen bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{maps: make(map[Key]any)}
}

// Get returns the (S, D, tag) map, creating it if absent.
//
// Maps created after the store is frozen are empty and frozen themselves, so
// a filler reading back its own links in pass 2 sees "no links" rather than
// a fresh writable map.
func Get[S comparable, D any](s *Store, tag string) *ObjectMap[S, D] {
	key := KeyFor[S, D](tag)
	if m, ok := s.maps[key]; ok {
		return m.(*ObjectMap[S, D])
	}
	m := New[S, D]()
	if s.frozen {
		m.Freeze()
		return m
	}
	s.maps[key] = m
	s.keys = append(s.keys, key)
	return m
}

// Lookup returns the (S, D, tag) map without creating it.
func Lookup[S comparable, D any](s *Store, tag string) (*ObjectMap[S, D], bool) {
	m, ok := s.maps[KeyFor[S, D](tag)]
	if !ok {
		return nil, false
	}
	return m.(*ObjectMap[S, D]), true
}

// Keys returns the keys of every map in creation order.
func (s *Store) Keys() []Key {
	return append([]Key(nil), s.keys...)
}

// Freeze makes the store and every map in it read-only.
func (s *Store) Freeze() {
	s.frozen = true
	for _, m := range s.maps {
		m.(interface{ Freeze() }).Freeze()
	}
}
