package constitutive

import "math"

// gravityAccel is g in m/s², used by the orifice leak law.
const gravityAccel = 9.81

// leakDelta is the pressure at which the leak law switches from the cubic
// bridge to the exact orifice law; the near-zero linear branch ends at p = 0.
const leakDelta = 1e-4

// LeakDemand evaluates the smoothed orifice leak law
// d = Cd·A·√(2g)·√p for p ≥ leakDelta, a near-zero-slope line for p ≤ 0, and
// a cubic bridge matching value/slope on [0, leakDelta] in between. p is
// head(leak) − elevation(leak).
func LeakDemand(p, area, cd float64) (demand, dDemandDp float64) {
	coef := cd * area * math.Sqrt(2*gravityAccel)

	switch {
	case p <= 0:
		return epsSlope * p, epsSlope
	case p >= leakDelta:
		return coef * math.Sqrt(p), coef / (2 * math.Sqrt(p))
	default:
		v0, m0 := epsSlope*0, epsSlope
		v1 := coef * math.Sqrt(leakDelta)
		m1 := coef / (2 * math.Sqrt(leakDelta))
		bridge := CubicBridge(0, v0, m0, leakDelta, v1, m1)
		return EvalCubic(bridge, p)
	}
}
