// Package constitutive implements the piecewise-smoothed nonlinear laws that
// make the hydraulic system tractable for Newton iteration: Hazen-Williams
// headloss, pump head curves, pressure-driven demand, and orifice leaks.
// Every function returns both value and derivative so the assembler can
// fill the Jacobian without finite differencing.
package constitutive

import "gonum.org/v1/gonum/mat"

// CubicBridge solves the unique cubic a + b·x + c·x² + d·x³ matching value
// and slope at two endpoints. The 4×4 system is Vandermonde-like in
// (x0, x1) with an extra
// derivative row at each point; it is solved with gonum rather than a
// hand-rolled Hermite-basis formula so the smoothing machinery shares the
// same linear-algebra dependency as the Newton driver (see DESIGN.md).
func CubicBridge(x0, v0, m0, x1, v1, m1 float64) [4]float64 {
	a := mat.NewDense(4, 4, []float64{
		1, x0, x0 * x0, x0 * x0 * x0,
		0, 1, 2 * x0, 3 * x0 * x0,
		1, x1, x1 * x1, x1 * x1 * x1,
		0, 1, 2 * x1, 3 * x1 * x1,
	})
	b := mat.NewVecDense(4, []float64{v0, m0, v1, m1})

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, b); err != nil {
		// The system is singular only when x0 == x1, a caller bug; degrade to
		// a constant matching v0 rather than panicking in a hot solver path.
		return [4]float64{v0, 0, 0, 0}
	}
	return [4]float64{coeffs.AtVec(0), coeffs.AtVec(1), coeffs.AtVec(2), coeffs.AtVec(3)}
}

// EvalCubic evaluates a + b·x + c·x² + d·x³ and its derivative at x.
func EvalCubic(c [4]float64, x float64) (value, deriv float64) {
	value = c[0] + c[1]*x + c[2]*x*x + c[3]*x*x*x
	deriv = c[1] + 2*c[2]*x + 3*c[3]*x*x
	return
}
