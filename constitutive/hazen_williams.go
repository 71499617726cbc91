package constitutive

import "math"

// Hazen-Williams piecewise thresholds.
const (
	hwQ1 = 3.49347323944e-3
	hwQ2 = 5.49347323944e-3
)

// transition cubic coefficients for h(q) on [hwQ1, hwQ2].
var hwTransition = [4]float64{
	2.45944613543e-6,
	0.0138413824671,
	-2.80374270811,
	430.125623753,
}

// PipeResistance returns the Hazen-Williams resistance coefficient
// R = 10.667 · C⁻¹·⁸⁵² · D⁻⁴·⁸⁷¹ · L (SI units throughout).
func PipeResistance(diameter, roughness, length float64) float64 {
	return 10.667 * math.Pow(roughness, -1.852) * math.Pow(diameter, -4.871) * length
}

// hw evaluates the unsigned piecewise h(|q|) function and its derivative
// with respect to |q|.
func hw(absQ float64) (value, deriv float64) {
	switch {
	case absQ < hwQ1:
		return 0.01 * absQ, 0.01
	case absQ > hwQ2:
		return math.Pow(absQ, 1.852), 1.852 * math.Pow(absQ, 0.852)
	default:
		return EvalCubic(hwTransition, absQ)
	}
}

// HWHeadloss returns headloss = R·sign(q)·h(|q|) and its derivative d(headloss)/dq
// for a Hazen-Williams pipe carrying flow q (m³/s) with resistance R.
//
// h is C¹ by construction (the transition cubic's coefficients match value
// and slope with both the linear and power-law branches at hwQ1/hwQ2); the
// sign(q)·h(|q|) combination is therefore C¹ through q=0 as well, since
// h(0) = 0 exactly on the linear branch.
func HWHeadloss(q, r float64) (headloss, dHeadlossDq float64) {
	absQ := math.Abs(q)
	v, d := hw(absQ)
	if q >= 0 {
		return r * v, r * d
	}
	return -r * v, r * d
}
