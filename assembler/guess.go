package assembler

import "github.com/hydrasolve/wntrgo/core"

// perturbation is added to every carried-over head to nudge the initial
// guess away from exact derivative singularities (p=P0/PF shoulders), and
// is the small positive flow that replaces a negative pump flow.
const perturbation = 1e-6

// InitialGuess builds x₀ from the previous converged step's variable values
// (state.PrevHeads/PrevFlows/PrevDemand). Heads are perturbed by a small
// tolerance; flows and consumer demands are copied unchanged, except that
// negative pump flows are reset to a small positive value; reservoir, tank
// and leak variables start at zero. On the very first
// timestep, with no previous solution, heads default to each node's
// elevation/fixed head and flows/demands to zero.
func InitialGuess(net *core.Network, state *core.SimState, vi *VarIndex) []float64 {
	x := make([]float64, vi.Size)

	for i, nd := range net.Nodes() {
		if h, ok := state.PrevHeads[i]; ok {
			x[vi.Head(i)] = h + perturbation
			continue
		}
		switch nd.Kind {
		case core.KindReservoir:
			x[vi.Head(i)] = nd.Reservoir.Head
		case core.KindTank:
			x[vi.Head(i)] = nd.Tank.Elevation + nd.Tank.InitLevel
		default:
			x[vi.Head(i)] = nd.Elevation()
		}
	}

	for i, link := range net.Links() {
		q, ok := state.PrevFlows[i]
		if !ok {
			q = 0
		}
		if link.Kind == core.KindPump && q < 0 {
			q = perturbation
		}
		x[vi.Flow(i)] = q
	}

	for ni, col := range vi.demandVar {
		x[col] = state.PrevDemand[ni]
	}
	for _, col := range vi.reservoirVar {
		x[col] = 0
	}
	for _, col := range vi.tankVar {
		x[col] = 0
	}
	for _, col := range vi.leakVar {
		x[col] = 0
	}

	return x
}
