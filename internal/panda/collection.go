package panda

import (
	"encoding/json"
	"iter"
	"slices"
)

// Collection is an ordered, append-only sequence of output records.
//
// Records are handed out as pointers that stay valid for the lifetime of the
// collection, including across Sort: a handle obtained from CreateBack keeps
// pointing at the same record, only its position changes.
type Collection[T any] struct {
	items []*T
	index map[*T]int
}

// NewCollection creates an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{index: make(map[*T]int)}
}

// CreateBack appends a zero record and returns its handle.
func (c *Collection[T]) CreateBack() *T {
	rec := new(T)
	c.index[rec] = len(c.items)
	c.items = append(c.items, rec)
	return rec
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// At returns the record at position i. Panics when i is out of range.
func (c *Collection[T]) At(i int) *T {
	return c.items[i]
}

// IndexOf returns the current position of a record handle, or -1 when the
// handle does not belong to this collection.
func (c *Collection[T]) IndexOf(rec *T) int {
	if i, ok := c.index[rec]; ok {
		return i
	}
	return -1
}

// Sort reorders the records stably by less and returns the permutation
// from new position to original position: originalIndices[new] = old.
func (c *Collection[T]) Sort(less func(a, b *T) bool) []int {
	originalIndices := make([]int, len(c.items))
	for i := range originalIndices {
		originalIndices[i] = i
	}
	slices.SortStableFunc(originalIndices, func(i, j int) int {
		switch {
		case less(c.items[i], c.items[j]):
			return -1
		case less(c.items[j], c.items[i]):
			return 1
		default:
			return 0
		}
	})

	sorted := make([]*T, len(c.items))
	for pos, old := range originalIndices {
		sorted[pos] = c.items[old]
		c.index[sorted[pos]] = pos
	}
	c.items = sorted
	return originalIndices
}

// All iterates over the records in their current order.
func (c *Collection[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i, rec := range c.items {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Records returns a copy of the records in their current order.
func (c *Collection[T]) Records() []T {
	out := make([]T, len(c.items))
	for i, rec := range c.items {
		out[i] = *rec
	}
	return out
}

func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Records())
}

func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	c.items = make([]*T, len(records))
	c.index = make(map[*T]int, len(records))
	for i := range records {
		c.items[i] = &records[i]
		c.index[&records[i]] = i
	}
	return nil
}
