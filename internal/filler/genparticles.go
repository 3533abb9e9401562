package filler

import (
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

// GenParticles copies the generator-level particles of simulated events.
// On real data it fills and publishes nothing.
type GenParticles struct {
	isRealData bool
	logger     *zap.Logger
}

// NewGenParticles creates the generator particles filler.
func NewGenParticles(opts Options) *GenParticles {
	return &GenParticles{
		isRealData: opts.IsRealData,
		logger:     opts.logger().Named(NameGenParticles),
	}
}

func (f *GenParticles) Name() string { return NameGenParticles }

func (f *GenParticles) BranchNames(events, _ *panda.BranchList) {
	if f.isRealData {
		events.Absent("genParticles")
		return
	}
	events.Append("genParticles")
}

func (f *GenParticles) Fill(ec *EventContext) error {
	if f.isRealData {
		return nil
	}

	out := ec.Output.GenParticles
	genMap := objmap.Get[ir.Ptr[ir.Candidate], panda.GenParticle](ec.Maps(f.Name()), "")

	for i := range ec.Input.GenParticles {
		in := &ec.Input.GenParticles[i]
		rec := out.CreateBack()
		rec.Particle = particle(in.P4)
		rec.PdgID = in.PdgID
		rec.Status = in.Status

		genMap.Add(ec.Input.GenParticlePtr(i), rec)
	}
	return nil
}

func (f *GenParticles) SetRefs(*EventContext) error { return nil }
