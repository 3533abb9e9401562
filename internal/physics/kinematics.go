// Package physics holds the formulas fillers invoke but do not own:
// angular distance, track impact parameters, isolation and the standard
// muon identification working points.
package physics

import "math"

// DeltaPhi returns phi1 - phi2 wrapped into [-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	return math.Remainder(phi1-phi2, 2*math.Pi)
}

// DeltaR returns the angular distance in eta-phi space.
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	deta := eta1 - eta2
	dphi := DeltaPhi(phi1, phi2)
	return math.Sqrt(deta*deta + dphi*dphi)
}

// CombIso is the delta-beta corrected isolation:
// ch + max(0, nh + ph - 0.5*pu).
func CombIso(ch, nh, ph, pu float64) float64 {
	return ch + max(0, nh+ph-0.5*pu)
}
