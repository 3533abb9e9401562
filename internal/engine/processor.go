package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/filler"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/panda"
)

// Result is the outcome of processing one event.
type Result struct {
	ID ir.EventID

	// Input is the canonical JSON of the input event.
	Input     []byte
	InputHash string

	// Event is the full output event. Document is the same event restricted
	// to the declared branches; Output and OutputHash are its canonical form.
	Event      *panda.Event
	Document   map[string]any
	Output     []byte
	OutputHash string

	Refs []ir.RefRecord
}

// Processor runs a fixed set of fillers over events, one event at a time.
// A Processor holds no per-event state and may be reused for any number of
// events, but must not be used by two goroutines at once.
type Processor struct {
	fillers     []filler.Filler
	branches    panda.BranchList
	runBranches panda.BranchList
	docTrees    []panda.DocTree
	logger      *zap.Logger
}

// NewProcessor creates a processor over fillers in the given order. The
// branch declaration of every filler is collected here, once per run.
func NewProcessor(fillers []filler.Filler, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		fillers: append([]filler.Filler(nil), fillers...),
		logger:  logger,
	}
	for _, f := range p.fillers {
		f.BranchNames(&p.branches, &p.runBranches)
		if d, ok := f.(filler.Documenter); ok {
			p.docTrees = append(p.docTrees, d.DocTrees()...)
		}
	}
	return p
}

// Names returns the filler names in processing order.
func (p *Processor) Names() []string {
	names := make([]string, len(p.fillers))
	for i, f := range p.fillers {
		names[i] = f.Name()
	}
	return names
}

// Branches returns the declared event branches.
func (p *Processor) Branches() panda.BranchList {
	return append(panda.BranchList(nil), p.branches...)
}

// RunBranches returns the declared per-run branches.
func (p *Processor) RunBranches() panda.BranchList {
	return append(panda.BranchList(nil), p.runBranches...)
}

// DocTrees returns the documentation trees of indexed array branches.
func (p *Processor) DocTrees() []panda.DocTree {
	return append([]panda.DocTree(nil), p.docTrees...)
}

// Process runs both passes over one event.
//
// On failure the returned error is an *EventError and the Result still
// carries the event identifier and, when the input could be encoded, its
// canonical form and hash. The output fields are empty.
func (p *Processor) Process(ctx context.Context, ev *ir.Event) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{ID: ev.EventID}
	input, inputHash, err := ir.HashCanonical(ir.DomainEvent, ev)
	if err != nil {
		return res, &EventError{Code: CodeInvalidInput, Phase: PhaseInput, Event: ev.EventID, Err: err}
	}
	res.Input = input
	res.InputHash = inputHash

	ec := filler.NewEventContext(ev)

	for _, f := range p.fillers {
		if err := p.call(f, PhaseFill, ev.EventID, func() error { return f.Fill(ec) }); err != nil {
			return res, err
		}
	}

	ec.Registry.Freeze()

	for _, f := range p.fillers {
		if err := p.call(f, PhaseSetRefs, ev.EventID, func() error { return f.SetRefs(ec) }); err != nil {
			return res, err
		}
	}

	doc, err := ec.Output.Document(p.branches)
	if err != nil {
		return res, &EventError{Code: CodeFillerFailed, Phase: PhaseOutput, Event: ev.EventID, Err: err}
	}
	output, outputHash, err := ir.HashCanonical(ir.DomainOutput, doc)
	if err != nil {
		return res, &EventError{Code: CodeFillerFailed, Phase: PhaseOutput, Event: ev.EventID, Err: err}
	}

	res.Event = ec.Output
	res.Document = doc
	res.Output = output
	res.OutputHash = outputHash
	for _, l := range ec.Output.Links(p.branches) {
		res.Refs = append(res.Refs, ir.RefRecord{
			Collection:  l.Collection,
			Index:       l.Index,
			Field:       l.Field,
			Target:      l.Target,
			TargetIndex: l.TargetIndex,
		})
	}

	p.logger.Debug("event processed",
		zap.Stringer("event", ev.EventID),
		zap.Int("muons", ec.Output.Muons.Len()),
		zap.Int("refs", len(res.Refs)),
	)
	return res, nil
}

// call runs one filler pass, converting errors and panics to EventErrors.
func (p *Processor) call(f filler.Filler, phase Phase, id ir.EventID, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EventError{
				Code:   CodeFillerPanic,
				Filler: f.Name(),
				Phase:  phase,
				Event:  id,
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if err := fn(); err != nil {
		return &EventError{Code: classify(err), Filler: f.Name(), Phase: phase, Event: id, Err: err}
	}
	return nil
}
