package filler

import (
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

// HLT copies the trigger objects and publishes, for every object, the list
// of filters it passed. Muon trigger matching reads that association.
type HLT struct {
	logger *zap.Logger
}

// NewHLT creates the trigger objects filler.
func NewHLT(opts Options) *HLT {
	return &HLT{logger: opts.logger().Named(NameHLT)}
}

func (f *HLT) Name() string { return NameHLT }

func (f *HLT) BranchNames(events, _ *panda.BranchList) {
	events.Append("triggerObjects")
}

func (f *HLT) Fill(ec *EventContext) error {
	out := ec.Output.TriggerObjects
	store := ec.Maps(f.Name())
	objMap := objmap.Get[ir.Ptr[ir.TriggerObject], panda.TriggerObject](store, "")
	nameMap := objmap.Get[ir.Ptr[ir.TriggerObject], panda.FilterList](store, "")

	for i := range ec.Input.TriggerObjects {
		in := &ec.Input.TriggerObjects[i]
		rec := out.CreateBack()
		rec.Particle = particle(in.P4)
		rec.Filters = append(panda.FilterList(nil), in.FilterLabels...)

		ptr := ec.Input.TriggerObjectPtr(i)
		objMap.Add(ptr, rec)
		nameMap.Add(ptr, &rec.Filters)
	}
	return nil
}

func (f *HLT) SetRefs(*EventContext) error { return nil }
