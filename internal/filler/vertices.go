package filler

import (
	"go.uber.org/zap"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
	"github.com/roach88/pandafill/internal/panda"
)

// Vertices copies the primary vertices in input order.
type Vertices struct {
	logger *zap.Logger
}

// NewVertices creates the vertices filler.
func NewVertices(opts Options) *Vertices {
	return &Vertices{logger: opts.logger().Named(NameVertices)}
}

func (f *Vertices) Name() string { return NameVertices }

func (f *Vertices) BranchNames(events, _ *panda.BranchList) {
	events.Append("vertices")
}

func (f *Vertices) Fill(ec *EventContext) error {
	out := ec.Output.Vertices
	vtxMap := objmap.Get[ir.Ptr[ir.Vertex], panda.RecoVertex](ec.Maps(f.Name()), "")

	for i := range ec.Input.Vertices {
		in := &ec.Input.Vertices[i]
		rec := out.CreateBack()
		rec.X = in.Position.X
		rec.Y = in.Position.Y
		rec.Z = in.Position.Z
		rec.Ndof = in.Ndof
		rec.Chi2 = in.Chi2
		rec.NTracks = in.NTracks

		vtxMap.Add(ec.Input.VertexPtr(i), rec)
	}
	return nil
}

func (f *Vertices) SetRefs(*EventContext) error { return nil }
