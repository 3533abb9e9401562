package engine

import "sync/atomic"

// Clock is the monotonic logical clock that orders processed events.
//
// Every event the engine hands to its sink is stamped with a strictly
// increasing seq from this clock. A run resumed against an existing store
// starts its clock at the store's last seq so sequence numbers never repeat.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// The Engine's single-writer loop is normally the only caller of Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
