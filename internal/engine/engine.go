package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
)

// Sink receives every processed event, ok or failed, in clock order.
// Implemented by *store.Store.
type Sink interface {
	WriteEvent(ctx context.Context, rec ir.EventRecord) error
}

// RunWriter is implemented by sinks that also record run metadata.
type RunWriter interface {
	WriteRun(ctx context.Context, run ir.RunRecord) error
}

// RunInfo describes the configuration a run processes events under.
type RunInfo struct {
	Config     string // Canonical JSON
	ConfigHash string
	IsRealData bool
	UseTrigger bool
}

// Stats counts what the Run loop has done so far.
type Stats struct {
	Processed   int
	OK          int
	Failed      int
	WriteErrors int
}

// Engine is the single-writer event loop.
//
// Thread-safety model:
//   - Enqueue(), Stop(), Stats(): safe from any goroutine
//   - Begin(), Run(): must be called from exactly one goroutine
type Engine struct {
	proc     *Processor
	sink     Sink
	clock    *Clock
	queue    *eventQueue
	runToken string
	logger   *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock, typically one resumed from the store's last seq.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine. A nil sink discards results, which is how dry runs
// work.
func New(proc *Processor, sink Sink, gen RunTokenGenerator, opts ...Option) *Engine {
	e := &Engine{
		proc:   proc,
		sink:   sink,
		clock:  NewClock(),
		queue:  newEventQueue(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.runToken = gen.Generate()
	e.logger = e.logger.With(zap.String("run", e.runToken))
	return e
}

// RunToken returns the token naming this run.
func (e *Engine) RunToken() string {
	return e.runToken
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Begin records the run in the sink, if the sink records runs, and returns
// the run record. Call it once before Run.
func (e *Engine) Begin(ctx context.Context, info RunInfo) (ir.RunRecord, error) {
	run := ir.RunRecord{
		Token:         e.runToken,
		Config:        info.Config,
		ConfigHash:    info.ConfigHash,
		Fillers:       e.proc.Names(),
		Branches:      e.proc.Branches(),
		IsRealData:    info.IsRealData,
		UseTrigger:    info.UseTrigger,
		SchemaVersion: ir.SchemaVersion,
		EngineVersion: ir.EngineVersion,
		FirstSeq:      e.clock.Current(),
	}
	if w, ok := e.sink.(RunWriter); ok {
		if err := w.WriteRun(ctx, run); err != nil {
			return ir.RunRecord{}, fmt.Errorf("begin run %s: %w", e.runToken, err)
		}
	}
	e.logger.Info("run started",
		zap.Strings("fillers", run.Fillers),
		zap.Int64("first_seq", run.FirstSeq),
	)
	return run, nil
}

// Enqueue submits an event for processing by the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev *ir.Event) bool {
	return e.queue.Enqueue(ev)
}

// QueueLen returns the number of events waiting to be processed.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called and the queue has
// drained.
//
// ERROR HANDLING: A failed event is logged, written as failed and counted;
// processing continues with the next event.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		ev, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(ctx, ev); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					e.queue.Close()
					return err
				}
				e.logger.Error("event write failed",
					zap.Stringer("event", ev.EventID),
					zap.Error(err),
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so this fires
			// immediately once stopped.
			if e.queue.Len() == 0 && e.stopped() {
				e.logger.Info("engine stopping: queue closed", zap.Any("stats", e.Stats()))
				return nil
			}
		}
	}
}

// ProcessAll enqueues events, stops the engine and runs it to completion.
func (e *Engine) ProcessAll(ctx context.Context, events []*ir.Event) error {
	for _, ev := range events {
		if !e.Enqueue(ev) {
			return fmt.Errorf("engine stopped before event %s was enqueued", ev.EventID)
		}
	}
	e.Stop()
	return e.Run(ctx)
}

// Stop closes the event queue. Run returns once queued events are processed.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Stats returns a snapshot of the loop counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// processEvent processes one event and writes it.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processEvent(ctx context.Context, ev *ir.Event) error {
	res, procErr := e.proc.Process(ctx, ev)
	if res == nil {
		// Only a cancelled context yields no result.
		return procErr
	}

	rec := ir.EventRecord{
		RunToken:  e.runToken,
		Seq:       e.clock.Next(),
		ID:        res.ID,
		Input:     string(res.Input),
		InputHash: res.InputHash,
	}
	if procErr != nil {
		rec.Status = ir.StatusFailed
		rec.ErrorCode = string(CodeOf(procErr))
		rec.Error = procErr.Error()
		e.logger.Warn("event failed",
			zap.Stringer("event", ev.EventID),
			zap.Int64("seq", rec.Seq),
			zap.String("code", rec.ErrorCode),
			zap.Error(procErr),
		)
	} else {
		rec.Status = ir.StatusOK
		rec.Output = string(res.Output)
		rec.OutputHash = res.OutputHash
		rec.Refs = res.Refs
		e.logger.Debug("event ok",
			zap.Stringer("event", ev.EventID),
			zap.Int64("seq", rec.Seq),
			zap.String("output_hash", rec.OutputHash),
		)
	}

	e.count(rec.Status)

	if e.sink == nil {
		return nil
	}
	if err := e.sink.WriteEvent(ctx, rec); err != nil {
		e.mu.Lock()
		e.stats.WriteErrors++
		e.mu.Unlock()
		return &EventError{Code: CodeSinkFailed, Phase: PhaseWrite, Event: ev.EventID, Err: err}
	}
	return nil
}

func (e *Engine) count(status ir.EventStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Processed++
	if status == ir.StatusOK {
		e.stats.OK++
	} else {
		e.stats.Failed++
	}
}
