package newton_test

import (
	"context"
	"testing"
	"time"

	"github.com/hydrasolve/wntrgo/newton"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// system: x0^2 - 4 = 0, x1 - 2*x0 = 0 -> x0=2, x1=4 from a positive start.
func residual(x []float64) []float64 {
	return []float64{x[0]*x[0] - 4, x[1] - 2*x[0]}
}

func jacobian(x []float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		2 * x[0], 0,
		-2, 1,
	})
}

func TestSolve_ConvergesToRoot(t *testing.T) {
	res, err := newton.Solve(context.Background(), residual, jacobian, []float64{1, 1}, newton.DefaultOptions())
	require.NoError(t, err)
	require.InDelta(t, 2, res.X[0], 1e-5)
	require.InDelta(t, 4, res.X[1], 1e-5)
	require.LessOrEqual(t, res.ResidNorm, newton.DefaultOptions().Tol)
}

func TestSolve_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := newton.DefaultOptions()
	opts.Tol = -1 // force at least one loop iteration before the cancellation check fires
	_, err := newton.Solve(ctx, residual, jacobian, []float64{1, 1}, opts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSolve_RespectsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	opts := newton.DefaultOptions()
	opts.Tol = -1
	_, err := newton.Solve(ctx, residual, jacobian, []float64{1, 1}, opts)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
