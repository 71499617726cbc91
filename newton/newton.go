// Package newton solves F(x)=0 given a residual and Jacobian callback,
// backtracking on the residual ∞-norm, with the linear solve at each step
// delegated to gonum.
//
// The call signature follows the context+options idiom used elsewhere for
// iterative algorithms (ctx context.Context, ..., opts Options): a
// context.Context for cooperative cancellation and an Options value for the
// tunables.
package newton

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNewtonDiverged is returned when the damped-Newton loop exhausts
// Options.MaxIter without the residual ∞-norm reaching Tol.
var ErrNewtonDiverged = errors.New("newton: failed to converge within MaxIter")

// ErrLinearSolverSingular is returned when the Jacobian is singular (or
// numerically indistinguishable from singular) at some iterate.
var ErrLinearSolverSingular = errors.New("newton: linear solve failed, Jacobian singular")

// ErrBacktrackFailed is returned when no damping factor within
// Options.BacktrackMaxIter attempts produces sufficient residual decrease.
var ErrBacktrackFailed = errors.New("newton: backtracking line search failed to find a decrease")

// Residual evaluates F(x).
type Residual func(x []float64) []float64

// Jacobian evaluates J(x).
type Jacobian func(x []float64) *mat.Dense

// Options tunes the damped-Newton loop. Zero value is NOT usable; call
// DefaultOptions() and override fields as needed.
type Options struct {
	MaxIter          int     // default: 1000
	Tol              float64 // default: 1e-6, on ‖F‖∞
	BacktrackC       float64 // Armijo constant, default: 1e-4
	BacktrackRho     float64 // contraction factor, default: 0.5
	BacktrackMaxIter int     // default: 100
}

// DefaultOptions returns the conservative parameter set used throughout.
func DefaultOptions() Options {
	return Options{
		MaxIter:          1000,
		Tol:              1e-6,
		BacktrackC:       1e-4,
		BacktrackRho:     0.5,
		BacktrackMaxIter: 100,
	}
}

// Result carries the converged solution plus diagnostics.
type Result struct {
	X          []float64
	Iterations int
	ResidNorm  float64
}

// Solve runs damped Newton with backtracking from x0 until ‖F(x)‖∞ ≤
// opts.Tol or opts.MaxIter is exhausted. ctx is checked between iterations
// for cooperative cancellation; a cancelled context returns ctx.Err()
// unwrapped, with the last iterate in Result.X.
func Solve(ctx context.Context, f Residual, j Jacobian, x0 []float64, opts Options) (Result, error) {
	x := append([]float64(nil), x0...)
	n := len(x)

	fx := f(x)
	norm := infNorm(fx)

	for iter := 0; iter < opts.MaxIter; iter++ {
		if norm <= opts.Tol {
			return Result{X: x, Iterations: iter, ResidNorm: norm}, nil
		}
		select {
		case <-ctx.Done():
			return Result{X: x, Iterations: iter, ResidNorm: norm}, ctx.Err()
		default:
		}

		jx := j(x)
		negFx := mat.NewVecDense(n, nil)
		for i := range fx {
			negFx.SetVec(i, -fx[i])
		}

		var dx mat.VecDense
		if err := dx.SolveVec(jx, negFx); err != nil {
			return Result{X: x, Iterations: iter, ResidNorm: norm}, ErrLinearSolverSingular
		}

		newX, newFx, newNorm, ok := backtrack(f, x, dx.RawVector().Data, norm, opts)
		if !ok {
			return Result{X: x, Iterations: iter, ResidNorm: norm}, ErrBacktrackFailed
		}
		x, fx, norm = newX, newFx, newNorm
	}

	return Result{X: x, Iterations: opts.MaxIter, ResidNorm: norm}, ErrNewtonDiverged
}

// backtrack performs Armijo-style backtracking: lambda halves (×ρ) until the
// trial point's residual norm has decreased by at least c·λ·norm, or the
// attempt budget is exhausted.
func backtrack(f Residual, x, dx []float64, norm float64, opts Options) (newX, newFx []float64, newNorm float64, ok bool) {
	lambda := 1.0
	n := len(x)
	trial := make([]float64, n)

	for k := 0; k < opts.BacktrackMaxIter; k++ {
		for i := range trial {
			trial[i] = x[i] + lambda*dx[i]
		}
		fTrial := f(trial)
		tNorm := infNorm(fTrial)
		if tNorm <= (1-opts.BacktrackC*lambda)*norm {
			return trial, fTrial, tNorm, true
		}
		lambda *= opts.BacktrackRho
	}
	return nil, nil, 0, false
}

func infNorm(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
