// Package engine drives fillers over a stream of events.
//
// The Processor runs the two-pass fill protocol for one event: every filler's
// Fill, a registry freeze, then every filler's SetRefs. It renders the output
// event restricted to the declared branches and hashes input and output.
//
// The Engine wraps a Processor in a single-writer event loop. Events are
// enqueued from any goroutine, stamped with a logical clock value and handed
// to a Sink in arrival order.
//
// Single-Writer Event Loop:
// Events are processed one at a time in one goroutine. This ensures:
// - Fillers never share per-event state across events
// - The store sees events in clock order
// - Replay reproduces the same sequence numbers
//
// Error handling is log and continue. An event whose processing fails is
// recorded as failed with its error code and the loop moves on; no event is
// retried.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// All events are stamped with a monotonic seq counter from Clock.Next().
// NEVER use wall-clock timestamps for ordering.
//
// Deterministic Scheduling:
// Fillers run in configuration order in both passes. The output of a
// successful event does not depend on that order.
package engine
