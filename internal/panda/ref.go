package panda

import (
	"encoding/json"
	"strconv"
)

// Ref is a reference from one output record to a record of another
// collection, stored as the target's position. The zero Ref is unset and
// serializes as -1.
type Ref[T any] struct {
	// pos is position+1 so that the zero value means unset.
	pos int
}

// SetRef points the reference at rec in coll. A record that does not belong
// to coll leaves the reference unset.
func (r *Ref[T]) SetRef(coll *Collection[T], rec *T) {
	r.pos = coll.IndexOf(rec) + 1
}

// SetIndex points the reference at position i; negative i unsets it.
func (r *Ref[T]) SetIndex(i int) {
	if i < 0 {
		r.pos = 0
		return
	}
	r.pos = i + 1
}

// Index returns the target position, or -1 when unset.
func (r Ref[T]) Index() int {
	return r.pos - 1
}

// IsValid reports whether the reference is set.
func (r Ref[T]) IsValid() bool {
	return r.pos > 0
}

// Get resolves the reference in coll.
func (r Ref[T]) Get(coll *Collection[T]) (*T, bool) {
	if !r.IsValid() || r.Index() >= coll.Len() {
		return nil, false
	}
	return coll.At(r.Index()), true
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(r.Index())), nil
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	r.SetIndex(i)
	return nil
}
