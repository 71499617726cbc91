// Package eps is the extended-period driver: it steps simulation time,
// invokes the discrete-state reconciler at each step, integrates tank
// levels forward from accepted flows, and persists results into the
// report package's column stores. Cancellation is cooperative: ctx is
// checked between steps and a cancelled run returns whatever steps were
// already accepted, the same context-threading idiom used throughout
// newton and reconcile.
package eps

import (
	"context"
	"math"

	"github.com/hydrasolve/wntrgo/assembler"
	"github.com/hydrasolve/wntrgo/constitutive"
	"github.com/hydrasolve/wntrgo/core"
	"github.com/hydrasolve/wntrgo/demand"
	"github.com/hydrasolve/wntrgo/newton"
	"github.com/hydrasolve/wntrgo/reconcile"
	"github.com/hydrasolve/wntrgo/report"
)

const piOver4 = 0.7853981633974483

// Config holds the run parameters for one extended-period simulation.
type Config struct {
	DurationSec    float64
	StepSec        float64
	PatternStepSec float64
	Mode           assembler.Mode
	ReconcileOpts  reconcile.Options
	NewtonOpts     newton.Options
}

// Result bundles the two flat column stores plus how many reporting steps
// were actually written before a SolverError or cancellation, if any.
type Result struct {
	Nodes        *report.NodeSeries
	Links        *report.LinkSeries
	StepsWritten int
	Err          error
}

// Run takes N = ceil(duration/step)+1 steps, at t = 0, step, ...,
// (N-1)·step. At each step it
// evaluates demands and reservoir heads, reconciles discrete state and
// solves the continuous system, records the converged solution, and
// carries tank heads and link flows forward as the next step's boundary
// conditions.
func Run(ctx context.Context, net *core.Network, cfg Config) Result {
	state := core.NewSimState(net)

	pumpCoeffs, err := precomputePumpCoeffs(net)
	if err != nil {
		return Result{Err: err}
	}

	nodeNames, nodeKinds := nodeMeta(net)
	linkNames, linkKinds := linkMeta(net)
	nodes := report.NewNodeSeries(nodeNames, nodeKinds)
	links := report.NewLinkSeries(linkNames, linkKinds)

	n := int(math.Ceil(cfg.DurationSec/cfg.StepSec)) + 1

	var tPrev float64
	for step := 0; step < n; step++ {
		select {
		case <-ctx.Done():
			return Result{Nodes: nodes, Links: links, StepsWritten: step, Err: ctx.Err()}
		default:
		}

		t := float64(step) * cfg.StepSec
		firstStep := step == 0

		required := evalRequired(net, t, cfg.PatternStepSec)
		reservoirHeads := evalReservoirHeads(net, t, cfg.PatternStepSec)

		res, err := reconcile.Run(ctx, net, state, tPrev, t, cfg.StepSec, firstStep, cfg.Mode, required, reservoirHeads, pumpCoeffs, cfg.ReconcileOpts, cfg.NewtonOpts)
		if err != nil {
			return Result{Nodes: nodes, Links: links, StepsWritten: step, Err: err}
		}

		vi := assembler.NewVarIndex(net, state.ActiveLeaks)
		recordStep(net, vi, res.X, t, required, nodes, links)
		advanceState(net, vi, res.X, state, t)

		tPrev = t
	}

	return Result{Nodes: nodes, Links: links, StepsWritten: n}
}

func precomputePumpCoeffs(net *core.Network) (map[int]constitutive.PumpCoeffs, error) {
	out := make(map[int]constitutive.PumpCoeffs)
	for _, li := range net.LinksOfKind(core.KindPump) {
		link := net.Link(li)
		if link.Pump.Mode != core.PumpHead {
			continue
		}
		coef, err := constitutive.SolvePumpCoeffs(link.Pump.Curve)
		if err != nil {
			return nil, err
		}
		out[li] = coef
	}
	return out, nil
}

func evalRequired(net *core.Network, t, patternStep float64) map[int]float64 {
	out := make(map[int]float64)
	for _, ni := range net.NodesOfKind(core.KindJunction) {
		out[ni] = demand.RequiredDemand(net, ni, t, patternStep)
	}
	return out
}

func evalReservoirHeads(net *core.Network, t, patternStep float64) map[int]float64 {
	out := make(map[int]float64)
	for _, ni := range net.NodesOfKind(core.KindReservoir) {
		out[ni] = demand.ReservoirHead(net, ni, t, patternStep)
	}
	return out
}

func nodeMeta(net *core.Network) ([]string, []core.NodeKind) {
	nds := net.Nodes()
	names := make([]string, len(nds))
	kinds := make([]core.NodeKind, len(nds))
	for i, nd := range nds {
		names[i] = nd.Name
		kinds[i] = nd.Kind
	}
	return names, kinds
}

func linkMeta(net *core.Network) ([]string, []core.LinkKind) {
	lks := net.Links()
	names := make([]string, len(lks))
	kinds := make([]core.LinkKind, len(lks))
	for i, l := range lks {
		names[i] = l.Name
		kinds[i] = l.Kind
	}
	return names, kinds
}

func recordStep(net *core.Network, vi *assembler.VarIndex, x []float64, t float64, required map[int]float64, nodes *report.NodeSeries, links *report.LinkSeries) {
	nds := net.Nodes()
	head := make([]float64, len(nds))
	pressure := make([]float64, len(nds))
	requiredOut := make([]float64, len(nds))
	actual := make([]float64, len(nds))

	for i, nd := range nds {
		h := x[vi.Head(i)]
		head[i] = h
		switch nd.Kind {
		case core.KindReservoir:
			pressure[i] = 0
		default:
			pressure[i] = h - nd.Elevation()
		}
		if dVar, ok := vi.Demand(i); ok {
			requiredOut[i] = required[i]
			actual[i] = x[dVar]
		}
		if lVar, ok := vi.LeakDemand(i); ok {
			actual[i] = x[lVar]
		}
	}
	nodes.AppendStep(t, head, pressure, requiredOut, actual)

	lks := net.Links()
	flow := make([]float64, len(lks))
	velocity := make([]float64, len(lks))
	for i, l := range lks {
		q := x[vi.Flow(i)]
		flow[i] = q
		if l.Kind == core.KindPipe {
			area := piOver4 * l.Pipe.Diameter * l.Pipe.Diameter
			if area > 0 {
				velocity[i] = math.Abs(q) / area
			}
		}
	}
	links.AppendStep(t, flow, velocity)
}

func advanceState(net *core.Network, vi *assembler.VarIndex, x []float64, state *core.SimState, t float64) {
	state.TimeSec = t
	for i, nd := range net.Nodes() {
		h := x[vi.Head(i)]
		state.PrevHeads[i] = h
		if nd.Kind == core.KindTank {
			state.LastTankHead[i] = h
		}
		if dVar, ok := vi.Demand(i); ok {
			state.PrevDemand[i] = x[dVar]
		}
	}
	for i := range net.Links() {
		q := x[vi.Flow(i)]
		state.PrevFlows[i] = q
		state.LastLinkFlow[i] = q
	}
}
