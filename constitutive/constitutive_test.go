package constitutive_test

import (
	"math"
	"testing"

	"github.com/hydrasolve/wntrgo/constitutive"
	"github.com/hydrasolve/wntrgo/core"
	"github.com/stretchr/testify/require"
)

func TestHWHeadloss_SignMatchesFlow(t *testing.T) {
	r := constitutive.PipeResistance(0.3, 100, 1000)
	hl, _ := constitutive.HWHeadloss(0.05, r)
	require.Greater(t, hl, 0.0)

	hlNeg, _ := constitutive.HWHeadloss(-0.05, r)
	require.Less(t, hlNeg, 0.0)
	require.InDelta(t, -hl, hlNeg, 1e-9)
}

func TestHWHeadloss_ContinuousAtBreakpoints(t *testing.T) {
	r := 1.0
	eps := 1e-9
	for _, q := range []float64{3.49347323944e-3, 5.49347323944e-3} {
		below, _ := constitutive.HWHeadloss(q-eps, r)
		above, _ := constitutive.HWHeadloss(q+eps, r)
		require.InDelta(t, below, above, 1e-6)
	}
}

func TestHWHeadloss_ZeroAtZeroFlow(t *testing.T) {
	hl, _ := constitutive.HWHeadloss(0, 1.0)
	require.InDelta(t, 0, hl, 1e-15)
}

func TestSolvePumpCoeffs_OnePoint(t *testing.T) {
	c := core.Curve{Points: []core.CurvePoint{{0.1, 50}}}
	coef, err := constitutive.SolvePumpCoeffs(c)
	require.NoError(t, err)
	require.InDelta(t, 66.667, coef.A, 1e-2)
	require.InDelta(t, 1666.67, coef.B, 1e-1)
	require.InDelta(t, 2, coef.C, 1e-9)
}

func TestSolvePumpCoeffs_ThreePointShutoff(t *testing.T) {
	c := core.Curve{Points: []core.CurvePoint{{0, 60}, {0.05, 50}, {0.1, 20}}}
	coef, err := constitutive.SolvePumpCoeffs(c)
	require.NoError(t, err)
	require.InDelta(t, 60, coef.A, 1e-9)

	// H(Q2) and H(Q3) should reproduce the curve points.
	h2 := coef.A - coef.B*math.Pow(0.05, coef.C)
	h3 := coef.A - coef.B*math.Pow(0.1, coef.C)
	require.InDelta(t, 50, h2, 1e-6)
	require.InDelta(t, 20, h3, 1e-6)
}

func TestModifiedPumpHead_BoundedNearZero(t *testing.T) {
	coef := constitutive.PumpCoeffs{A: 60, B: 1e4, C: 2}
	_, d1 := constitutive.ModifiedPumpHead(coef, 0)
	require.Less(t, math.Abs(d1), 1.0)
}

func TestPDD_Monotonic(t *testing.T) {
	required, p0, pf := 0.01, 0.0, 20.0
	prev := -1.0
	for p := -5.0; p <= 25.0; p += 0.25 {
		d, _ := constitutive.PDD(p, required, p0, pf)
		require.GreaterOrEqual(t, d, prev-1e-9)
		prev = d
	}
}

func TestPDD_Endpoints(t *testing.T) {
	required, p0, pf := 0.01, 5.0, 20.0
	dAtP0, _ := constitutive.PDD(p0, required, p0, pf)
	require.InDelta(t, 0, dAtP0, 1e-3)

	dAtPF, _ := constitutive.PDD(pf, required, p0, pf)
	require.InDelta(t, required, dAtPF, 1e-3)
}

func TestLeakDemand_NonPositiveAtOrBelowZeroPressure(t *testing.T) {
	d, _ := constitutive.LeakDemand(-1, 0.05, 0.75)
	require.Less(t, d, 0.0)

	d2, _ := constitutive.LeakDemand(0, 0.05, 0.75)
	require.InDelta(t, 0, d2, 1e-12)
}

func TestLeakDemand_PositivePastDelta(t *testing.T) {
	d, _ := constitutive.LeakDemand(1.0, 0.05, 0.75)
	require.Greater(t, d, 0.0)
}
