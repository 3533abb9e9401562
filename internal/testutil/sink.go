package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/pandafill/internal/ir"
)

// MemorySink records runs and events in memory. It satisfies the engine's
// Sink, RunWriter and EventSource interfaces.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemorySink struct {
	mu     sync.Mutex
	runs   map[string]ir.RunRecord
	events []ir.EventRecord

	// FailWrites makes WriteEvent return this error when set.
	FailWrites error
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{runs: make(map[string]ir.RunRecord)}
}

// WriteRun stores run, keeping the first record for a token.
func (s *MemorySink) WriteRun(_ context.Context, run ir.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.Token]; !ok {
		s.runs[run.Token] = run
	}
	return nil
}

// WriteEvent appends rec.
func (s *MemorySink) WriteEvent(_ context.Context, rec ir.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.events = append(s.events, rec)
	return nil
}

// ReadRun returns the run with token.
func (s *MemorySink) ReadRun(_ context.Context, token string) (ir.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[token]
	if !ok {
		return ir.RunRecord{}, fmt.Errorf("run %q not found", token)
	}
	return run, nil
}

// ReadEvents returns the events of a run in write order.
func (s *MemorySink) ReadEvents(_ context.Context, runToken string) ([]ir.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ir.EventRecord
	for _, rec := range s.events {
		if rec.RunToken == runToken {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Events returns a copy of every written event.
func (s *MemorySink) Events() []ir.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ir.EventRecord(nil), s.events...)
}

// Replace overwrites the stored event with the same run and seq. Tests use
// it to simulate a stored outcome that no longer reproduces.
func (s *MemorySink) Replace(rec ir.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].RunToken == rec.RunToken && s.events[i].Seq == rec.Seq {
			s.events[i] = rec
			return
		}
	}
}
