package physics

import (
	"math"

	"github.com/roach88/pandafill/internal/ir"
)

// Origin is the detector coordinate origin, the reference used for impact
// parameters when an event has no primary vertex.
var Origin = ir.Point{}

// DXY is the transverse impact parameter of trk with respect to pv.
func DXY(trk *ir.Track, pv ir.Point) float64 {
	pt := math.Hypot(trk.Momentum.X, trk.Momentum.Y)
	if pt == 0 {
		return 0
	}
	return (-(trk.Reference.X-pv.X)*trk.Momentum.Y + (trk.Reference.Y-pv.Y)*trk.Momentum.X) / pt
}

// DZ is the longitudinal impact parameter of trk with respect to pv.
func DZ(trk *ir.Track, pv ir.Point) float64 {
	pt := math.Hypot(trk.Momentum.X, trk.Momentum.Y)
	if pt == 0 {
		return trk.Reference.Z - pv.Z
	}
	transverse := (trk.Reference.X-pv.X)*trk.Momentum.X + (trk.Reference.Y-pv.Y)*trk.Momentum.Y
	return (trk.Reference.Z - pv.Z) - transverse/pt*(trk.Momentum.Z/pt)
}
