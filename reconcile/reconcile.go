package reconcile

import (
	"context"

	"github.com/hydrasolve/wntrgo/assembler"
	"github.com/hydrasolve/wntrgo/constitutive"
	"github.com/hydrasolve/wntrgo/core"
	"github.com/hydrasolve/wntrgo/newton"
)

// Run performs one timestep's discrete-state reconciliation trial loop:
// pre-solve updates that don't depend on this step's continuous solution,
// then repeated rounds of assemble-solve-postsolve
// until the closed/open sets and valve modes stop changing, or MaxTrials
// is exhausted.
//
// required and reservoirHeads carry the already pattern-evaluated demand
// and reservoir-head values for time t (demand.RequiredDemand /
// demand.ReservoirHead); pumpCoeffs is precomputed once per network via
// constitutive.SolvePumpCoeffs, since a pump's curve never changes shape
// across a run.
func Run(ctx context.Context, net *core.Network, state *core.SimState, tPrev, t, dtSec float64, firstStep bool, mode assembler.Mode, required, reservoirHeads map[int]float64, pumpCoeffs map[int]constitutive.PumpCoeffs, opts Options, nopts newton.Options) (newton.Result, error) {
	applyTimeControls(net, state, tPrev, t)
	applyConditionalControls(net, state)
	applyPumpOutages(net, state, t)
	applyLeakActivation(net, state, t)
	applyTankCutoffPreclose(net, state, dtSec)

	var result newton.Result
	for trial := 0; trial < opts.MaxTrials; trial++ {
		vi := assembler.NewVarIndex(net, state.ActiveLeaks)
		sys := assembler.NewSystem(net, state, vi, mode, t, dtSec, firstStep, required, reservoirHeads, pumpCoeffs)
		x0 := assembler.InitialGuess(net, state, vi)

		res, err := newton.Solve(ctx, sys.Residual, sys.Jacobian, x0, nopts)
		if err != nil {
			return res, err
		}
		result = res

		headOf := func(ni int) float64 { return res.X[vi.Head(ni)] }
		flowOf := func(li int) float64 { return res.X[vi.Flow(li)] }

		before := state.Clone()

		applyBackflow(net, state, flowOf, headOf, opts)
		applyTankCutoffPostsolve(net, state, res.X, headOf, opts)
		applyLowSuctionTrip(net, state, headOf, opts)
		applyCheckValves(net, state, flowOf, headOf, opts)
		applyValveModeTransitions(net, state, flowOf, headOf, opts)

		if core.DiscreteEqual(before, state) {
			return result, nil
		}
	}
	return result, ErrMaxTrialsExceeded
}
