package constitutive

import (
	"errors"
	"math"

	"github.com/hydrasolve/wntrgo/core"
)

// ErrUnsolvablePumpCurve is returned when the exponent equation for a
// general (Q1 != 0) 3-point curve has no sign change over the bisection
// bracket, so no root can be bracketed.
var ErrUnsolvablePumpCurve = errors.New("constitutive: could not solve 3-point pump curve coefficients")

// PumpCoeffs is the A, B, C triple of H(q) = A − B·q^C.
type PumpCoeffs struct {
	A, B, C float64
}

// SolvePumpCoeffs derives A, B, C from a validated 1- or 3-point curve.
//
//   - 1-point (Q1, H1): H(q) = (4/3)H1 − (1/3)(H1/Q1²)·q², i.e. A=(4/3)H1,
//     B=(1/3)(H1/Q1²), C=2 — folded into the same A−B·q^C form used
//     everywhere else so the assembler has one pump-curve code path.
//   - 3-point with Q1=0 (the common shutoff-head layout): C is solved in
//     closed form, B follows, A=H1.
//   - 3-point with Q1≠0: the general nonlinear 3×3 system is reduced to a
//     single transcendental equation in C and solved by bisection.
func SolvePumpCoeffs(c core.Curve) (PumpCoeffs, error) {
	if err := c.ValidatePumpCurve(); err != nil {
		return PumpCoeffs{}, err
	}
	pts := c.Points
	if len(pts) == 1 {
		q1, h1 := pts[0].X, pts[0].Y
		return PumpCoeffs{
			A: (4.0 / 3.0) * h1,
			B: (1.0 / 3.0) * (h1 / (q1 * q1)),
			C: 2,
		}, nil
	}

	q1, h1 := pts[0].X, pts[0].Y
	q2, h2 := pts[1].X, pts[1].Y
	q3, h3 := pts[2].X, pts[2].Y

	if q1 == 0 {
		cExp := math.Log((h1-h2)/(h1-h3)) / math.Log(q2/q3)
		b := (h1 - h2) / math.Pow(q2, cExp)
		return PumpCoeffs{A: h1, B: b, C: cExp}, nil
	}

	cExp, ok := solveExponentByBisection(q1, h1, q2, h2, q3, h3)
	if !ok {
		return PumpCoeffs{}, ErrUnsolvablePumpCurve
	}
	b := (h1 - h2) / (math.Pow(q2, cExp) - math.Pow(q1, cExp))
	a := h1 + b*math.Pow(q1, cExp)
	return PumpCoeffs{A: a, B: b, C: cExp}, nil
}

// residual(C) = (H1-H2)/(H1-H3) - (Q2^C - Q1^C)/(Q3^C - Q1^C), root-found by
// bisection over a generous exponent range; pump curves are always
// decreasing so this ratio is monotonic in C on (0, 10).
func solveExponentByBisection(q1, h1, q2, h2, q3, h3 float64) (float64, bool) {
	target := (h1 - h2) / (h1 - h3)
	f := func(cExp float64) float64 {
		return (math.Pow(q2, cExp) - math.Pow(q1, cExp))/(math.Pow(q3, cExp)-math.Pow(q1, cExp)) - target
	}
	lo, hi := 1e-3, 10.0
	flo, fhi := f(lo), f(hi)
	if flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		fm := f(mid)
		if math.Abs(fm) < 1e-12 {
			return mid, true
		}
		if flo*fm <= 0 {
			hi = mid
			fhi = fm
		} else {
			lo = mid
			flo = fm
		}
	}
	return 0.5 * (lo + hi), true
}

// modified-pump-curve low-flow patch parameters.
const (
	pumpLowFlowQ     = 1e-8
	pumpLowFlowSlope = -1e-11
)

// ModifiedPumpHead evaluates the modified pump head-gain curve H(q) and its
// derivative. For q ≥ pumpLowFlowQ it is the plain A−B·q^C law; below that it
// is patched with a near-zero-slope line through H(0)=A and bridged to the
// curve with a cubic so the Jacobian stays bounded at q=0.
func ModifiedPumpHead(coef PumpCoeffs, q float64) (head, dHeadDq float64) {
	if q >= pumpLowFlowQ {
		hv := coef.A - coef.B*math.Pow(q, coef.C)
		dv := -coef.B * coef.C * math.Pow(q, coef.C-1)
		return hv, dv
	}

	lineAt := func(x float64) (float64, float64) {
		return coef.A + pumpLowFlowSlope*x, pumpLowFlowSlope
	}
	if q <= 0 {
		v, d := lineAt(q)
		return v, d
	}

	v0, m0 := lineAt(0)
	curveAtJoin := coef.A - coef.B*math.Pow(pumpLowFlowQ, coef.C)
	dCurveAtJoin := -coef.B * coef.C * math.Pow(pumpLowFlowQ, coef.C-1)
	bridge := CubicBridge(0, v0, m0, pumpLowFlowQ, curveAtJoin, dCurveAtJoin)
	return EvalCubic(bridge, q)
}
