package filler

import (
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

// PFCandidates copies the packed particle-flow candidates, ordered by
// descending pt, and resolves each candidate's vertex in pass 2.
type PFCandidates struct {
	logger *zap.Logger
}

// NewPFCandidates creates the PF candidates filler.
func NewPFCandidates(opts Options) *PFCandidates {
	return &PFCandidates{logger: opts.logger().Named(NamePFCandidates)}
}

func (f *PFCandidates) Name() string { return NamePFCandidates }

func (f *PFCandidates) BranchNames(events, _ *panda.BranchList) {
	events.Append("pfCandidates")
}

func (f *PFCandidates) Fill(ec *EventContext) error {
	in := ec.Input
	out := ec.Output.PFCandidates

	for i := range in.PFCandidates {
		cand := &in.PFCandidates[i]
		rec := out.CreateBack()
		rec.Particle = particle(cand.P4)
		rec.PdgID = cand.PdgID
		rec.Charge = cand.Charge
	}

	originalIndices := out.Sort(panda.PtGreater[*panda.PFCand])

	store := ec.Maps(f.Name())
	pfMap := objmap.Get[ir.Ptr[ir.Candidate], panda.PFCand](store, "")
	vtxMap := objmap.Get[ir.Ptr[ir.Vertex], panda.PFCand](store, "")

	for pos, idx := range originalIndices {
		rec := out.At(pos)
		pfMap.Add(in.PFCandidatePtr(idx), rec)
		if vtx := in.PFCandidates[idx].Vertex; vtx.IsNonnull() {
			vtxMap.Add(vtx, rec)
		}
	}
	return nil
}

func (f *PFCandidates) SetRefs(ec *EventContext) error {
	vtxMap, err := Published[ir.Ptr[ir.Vertex], panda.RecoVertex](ec, NameVertices, "")
	if err != nil {
		return err
	}
	local := objmap.Get[ir.Ptr[ir.Vertex], panda.PFCand](ec.Maps(f.Name()), "")

	resolved := resolveLinks(local, vtxMap, ec.Output.Vertices, func(rec *panda.PFCand) *panda.Ref[panda.RecoVertex] {
		return &rec.Vertex
	})
	f.logger.Debug("resolved candidate vertices", zap.Int("links", local.Len()), zap.Int("resolved", resolved))
	return nil
}

func particle(p ir.P4) panda.Particle {
	return panda.Particle{Pt: p.Pt, Eta: p.Eta, Phi: p.Phi, Mass: p.Mass}
}
