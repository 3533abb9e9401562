package filler

import (
	"math"

	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/panda"
	"github.com/roach88/pandafill/internal/physics"
)

// Identification fills the identification flags and impact parameters of
// one muon. The variant is chosen once per input muon from its tag.
type Identification interface {
	// Identify sets loose, medium, mediumBtoF, tight and soft. pv is nil when
	// the event has no primary vertex; tight and soft are then false.
	Identify(out *panda.Muon, in *ir.Muon, pv *ir.Vertex)

	// DXY is the transverse impact parameter with respect to ref.
	DXY(in *ir.Muon, ref ir.Point) float64
}

// BasicIdentification evaluates the working points from the muon's tracks.
type BasicIdentification struct {
	Selectors physics.Selectors
}

func (id BasicIdentification) Identify(out *panda.Muon, in *ir.Muon, pv *ir.Vertex) {
	out.Loose = id.Selectors.IsLoose(in)
	out.Medium = id.Selectors.IsMedium(in)
	out.MediumBtoF = false
	if pv == nil {
		out.Tight = false
		out.Soft = false
		return
	}
	out.Tight = id.Selectors.IsTight(in, pv)
	out.Soft = id.Selectors.IsSoft(in, pv)
}

func (BasicIdentification) DXY(in *ir.Muon, ref ir.Point) float64 {
	return math.Abs(physics.DXY(in.BestTrack, ref))
}

// ExtendedIdentification uses the results embedded in analysis-level
// muons and their stored impact parameter.
type ExtendedIdentification struct {
	Selectors physics.Selectors
}

func (id ExtendedIdentification) Identify(out *panda.Muon, in *ir.Muon, pv *ir.Vertex) {
	out.Loose = in.Pat.Loose
	out.Medium = in.Pat.Medium
	out.MediumBtoF = physics.MediumBtoF(out.Loose, in)
	if pv == nil {
		out.Tight = false
		out.Soft = false
		return
	}
	out.Tight = id.Selectors.IsTight(in, pv)
	out.Soft = id.Selectors.IsSoft(in, pv)
}

// DXY returns the stored impact parameter regardless of ref.
func (ExtendedIdentification) DXY(in *ir.Muon, _ ir.Point) float64 {
	return in.Pat.DB
}

// identificationFor selects the identification variant of a muon.
func identificationFor(in *ir.Muon, sel physics.Selectors) (Identification, bool) {
	switch in.Variant {
	case ir.MuonVariantReco, "":
		return BasicIdentification{Selectors: sel}, true
	case ir.MuonVariantPat:
		if in.Pat == nil {
			return nil, false
		}
		return ExtendedIdentification{Selectors: sel}, true
	default:
		return nil, false
	}
}
