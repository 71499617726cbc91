package assembler

import (
	"math"

	"github.com/hydrasolve/wntrgo/constitutive"
	"github.com/hydrasolve/wntrgo/core"
	"gonum.org/v1/gonum/mat"
)

// waterDensityG is ρ·g (kg/m³ · m/s²) used by the Power-mode pump equation.
const waterDensityG = 1000 * 9.81

// System is the per-timestep nonlinear system: a Network plus the discrete
// state the reconciler currently holds, bundled with the variable layout
// needed to emit F(x) and J(x).
type System struct {
	Net   *core.Network
	State *core.SimState
	VI    *VarIndex

	Mode        Mode
	TimeSec     float64
	DtSec       float64
	FirstStep   bool
	Required    map[int]float64 // junction node idx -> D_required(j, t)
	Reservoir   map[int]float64 // reservoir node idx -> head(t) (pattern-evaluated)
	PumpCoeffs  map[int]constitutive.PumpCoeffs // pump link idx -> A,B,C

	closedSet map[int]bool
}

// NewSystem precomputes the closed-link set for the trial and returns a
// ready-to-solve System.
func NewSystem(net *core.Network, state *core.SimState, vi *VarIndex, mode Mode, t, dt float64, firstStep bool, required, reservoirHeads map[int]float64, pumpCoeffs map[int]constitutive.PumpCoeffs) *System {
	return &System{
		Net: net, State: state, VI: vi,
		Mode: mode, TimeSec: t, DtSec: dt, FirstStep: firstStep,
		Required: required, Reservoir: reservoirHeads, PumpCoeffs: pumpCoeffs,
		closedSet: state.ClosedSet(),
	}
}

func (s *System) isLinkClosed(li int, link *core.Link) bool {
	if link.Kind == core.KindValve && s.State.ValveModeOf[li] == core.ValveClosed {
		return true
	}
	return s.closedSet[li]
}

// rowLayout mirrors VarIndex's column layout but is independent of it; rows
// are grouped by equation family rather than by variable family.
type rowLayout struct {
	linkRow      int // base row for link momentum equations
	massBalRow   int // base row for node mass-balance equations
	reservoirRow int // base row for reservoir pin equations
	tankRow      int // base row for tank dynamics/pin equations
	demandRow    int // base row for junction demand-law equations
	leakRow      int // base row for leak-law equations

	reservoirs []int // node idx list, order matches reservoirRow offsets
	tanks      []int
	junctions  []int
	leaks      []int // active leaks only, order matches leakRow offsets
}

func (s *System) layout() rowLayout {
	var rl rowLayout
	rl.linkRow = 0
	rl.massBalRow = s.VI.NumLinks
	rl.reservoirRow = rl.massBalRow + s.VI.NumNodes

	for i, nd := range s.Net.Nodes() {
		if nd.Kind == core.KindReservoir {
			rl.reservoirs = append(rl.reservoirs, i)
		}
	}
	rl.tankRow = rl.reservoirRow + len(rl.reservoirs)
	for i, nd := range s.Net.Nodes() {
		if nd.Kind == core.KindTank {
			rl.tanks = append(rl.tanks, i)
		}
	}
	rl.demandRow = rl.tankRow + len(rl.tanks)
	for i, nd := range s.Net.Nodes() {
		if nd.Kind == core.KindJunction {
			rl.junctions = append(rl.junctions, i)
		}
	}
	rl.leakRow = rl.demandRow + len(rl.junctions)
	for i := range s.Net.Nodes() {
		if _, ok := s.VI.leakVar[i]; ok {
			rl.leaks = append(rl.leaks, i)
		}
	}
	return rl
}

// Size returns the number of unknowns (== number of equations).
func (s *System) Size() int { return s.VI.Size }

// Residual evaluates F(x).
func (s *System) Residual(x []float64) []float64 {
	rl := s.layout()
	f := make([]float64, s.VI.Size)

	for li := range s.Net.Links() {
		link := s.Net.Link(li)
		f[rl.linkRow+li] = s.linkResidual(li, link, x)
	}

	for ni, nd := range s.Net.Nodes() {
		f[rl.massBalRow+ni] = s.massBalanceResidual(ni, &nd, x)
	}

	for k, ni := range rl.reservoirs {
		head := s.Reservoir[ni]
		f[rl.reservoirRow+k] = x[s.VI.Head(ni)] - head
	}

	for k, ni := range rl.tanks {
		nd := s.Net.Node(ni)
		if s.FirstStep {
			fixedHead := nd.Tank.Elevation + nd.Tank.InitLevel
			f[rl.tankRow+k] = x[s.VI.Head(ni)] - fixedHead
			continue
		}
		inflowVar, _ := s.VI.TankInflow(ni)
		prevHead := s.State.LastTankHead[ni]
		f[rl.tankRow+k] = (x[inflowVar]*s.DtSec*4)/(math.Pi*nd.Tank.Diameter*nd.Tank.Diameter) - (x[s.VI.Head(ni)] - prevHead)
	}

	for k, ni := range rl.junctions {
		f[rl.demandRow+k] = s.demandLawResidual(ni, x)
	}

	for k, ni := range rl.leaks {
		f[rl.leakRow+k] = s.leakLawResidual(ni, x)
	}

	return f
}

func (s *System) linkResidual(li int, link *core.Link, x []float64) float64 {
	q := x[s.VI.Flow(li)]
	if s.isLinkClosed(li, link) {
		return q
	}
	hFrom := x[s.VI.Head(link.From)]
	hTo := x[s.VI.Head(link.To)]

	switch link.Kind {
	case core.KindPipe:
		r := constitutive.PipeResistance(link.Pipe.Diameter, link.Pipe.Roughness, link.Pipe.Length)
		hl, _ := constitutive.HWHeadloss(q, r)
		return hl - (hFrom - hTo)
	case core.KindPump:
		if s.State.ClosedByOutage[li] {
			return hFrom - hTo
		}
		if link.Pump.Mode == core.PumpPower {
			return (hFrom-hTo)*q*waterDensityG + link.Pump.Power
		}
		coef := s.PumpCoeffs[li]
		head, _ := constitutive.ModifiedPumpHead(coef, q)
		return (hTo - hFrom) - head
	default: // valve
		mode := s.State.ValveModeOf[li]
		switch mode {
		case core.ValveActive:
			toElev := s.Net.Node(link.To).Elevation()
			return hTo - (link.Valve.Setting + toElev)
		case core.ValveOpen:
			kv := valveKv(link.Valve)
			return kv*q*math.Abs(q) - (hFrom - hTo)
		default: // Closed handled by isLinkClosed, kept here for completeness
			return q
		}
	}
}

func valveKv(v core.Valve) float64 {
	area := piOver4 * v.Diameter * v.Diameter
	if area == 0 {
		return 0
	}
	return v.MinorLoss / (2 * 9.81 * area * area)
}

const piOver4 = 0.7853981633974483

func (s *System) massBalanceResidual(ni int, nd *core.Node, x []float64) float64 {
	useCurrentFlows := true
	if nd.Kind == core.KindTank && !s.FirstStep {
		useCurrentFlows = false
	}

	var net float64
	for _, li := range s.Net.LinksFor(ni) {
		link := s.Net.Link(li)
		var q float64
		if useCurrentFlows {
			q = x[s.VI.Flow(li)]
		} else {
			q = s.State.LastLinkFlow[li]
		}
		if link.To == ni {
			net += q
		}
		if link.From == ni {
			net -= q
		}
	}

	switch nd.Kind {
	case core.KindJunction:
		if s.isIsolated(ni) {
			// Mass balance and demand law are both deactivated for an
			// isolated junction; this row is repurposed to pin the head
			// instead, since every incident link's q=0
			// equation leaves H_j's column otherwise unconstrained.
			return x[s.VI.Head(ni)] - nd.Junction.Elevation
		}
		dVar, ok := s.VI.Demand(ni)
		if !ok {
			return net
		}
		return net - x[dVar]
	case core.KindReservoir:
		qVar, ok := s.VI.ReservoirFlow(ni)
		if !ok {
			return net
		}
		return net - x[qVar]
	case core.KindTank:
		iVar, ok := s.VI.TankInflow(ni)
		if !ok {
			return net
		}
		return net - x[iVar]
	case core.KindLeak:
		if lVar, ok := s.VI.LeakDemand(ni); ok {
			return net - x[lVar]
		}
		return net // inactive leak: pinned to zero sink
	}
	return net
}

func (s *System) isIsolated(ni int) bool {
	for _, li := range s.Net.LinksFor(ni) {
		link := s.Net.Link(li)
		if !s.isLinkClosed(li, link) {
			return false
		}
	}
	return len(s.Net.LinksFor(ni)) > 0
}

func (s *System) demandLawResidual(ni int, x []float64) float64 {
	dVar, _ := s.VI.Demand(ni)
	nd := s.Net.Node(ni)

	if s.isIsolated(ni) {
		// The other half of the pinning pair (H_j = elev_j) lives in the
		// mass-balance row for this node, which is repurposed for isolated
		// junctions instead of being deactivated outright.
		return x[dVar]
	}

	required := s.Required[ni]
	if required == 0 {
		return x[dVar]
	}
	if s.Mode == DD {
		return x[dVar] - required
	}
	p := x[s.VI.Head(ni)] - nd.Junction.Elevation
	d, _ := constitutive.PDD(p, required, nd.Junction.P0, nd.Junction.PF)
	return x[dVar] - d
}

func (s *System) leakLawResidual(ni int, x []float64) float64 {
	lVar, ok := s.VI.LeakDemand(ni)
	if !ok {
		return 0
	}
	nd := s.Net.Node(ni)
	p := x[s.VI.Head(ni)] - nd.Leak.Elev
	d, _ := constitutive.LeakDemand(p, nd.Leak.Area, nd.Leak.Cd)
	return x[lVar] - d
}

// Jacobian evaluates J(x) as a dense matrix (see DESIGN.md for why dense
// rather than a dedicated sparse-matrix package).
func (s *System) Jacobian(x []float64) *mat.Dense {
	n := s.VI.Size
	j := mat.NewDense(n, n, nil)
	rl := s.layout()

	for li := range s.Net.Links() {
		link := s.Net.Link(li)
		s.fillLinkJacobian(j, rl.linkRow+li, li, link, x)
	}
	for ni, nd := range s.Net.Nodes() {
		s.fillMassBalanceJacobian(j, rl.massBalRow+ni, ni, &nd, x)
	}
	for k, ni := range rl.reservoirs {
		j.Set(rl.reservoirRow+k, s.VI.Head(ni), 1)
	}
	for k, ni := range rl.tanks {
		row := rl.tankRow + k
		if s.FirstStep {
			j.Set(row, s.VI.Head(ni), 1)
			continue
		}
		nd := s.Net.Node(ni)
		inflowVar, _ := s.VI.TankInflow(ni)
		j.Set(row, inflowVar, (s.DtSec*4)/(math.Pi*nd.Tank.Diameter*nd.Tank.Diameter))
		j.Set(row, s.VI.Head(ni), -1)
	}
	for k, ni := range rl.junctions {
		s.fillDemandLawJacobian(j, rl.demandRow+k, ni, x)
	}
	for k, ni := range rl.leaks {
		s.fillLeakLawJacobian(j, rl.leakRow+k, ni, x)
	}
	return j
}

func (s *System) fillLinkJacobian(j *mat.Dense, row, li int, link *core.Link, x []float64) {
	qCol := s.VI.Flow(li)
	if s.isLinkClosed(li, link) {
		j.Set(row, qCol, 1)
		return
	}
	fromCol, toCol := s.VI.Head(link.From), s.VI.Head(link.To)
	q := x[qCol]

	switch link.Kind {
	case core.KindPipe:
		r := constitutive.PipeResistance(link.Pipe.Diameter, link.Pipe.Roughness, link.Pipe.Length)
		_, dHl := constitutive.HWHeadloss(q, r)
		j.Set(row, qCol, dHl)
		j.Set(row, fromCol, -1)
		j.Set(row, toCol, 1)
	case core.KindPump:
		if s.State.ClosedByOutage[li] {
			j.Set(row, fromCol, 1)
			j.Set(row, toCol, -1)
			return
		}
		if link.Pump.Mode == core.PumpPower {
			hFrom, hTo := x[fromCol], x[toCol]
			j.Set(row, qCol, (hFrom-hTo)*waterDensityG)
			j.Set(row, fromCol, q*waterDensityG)
			j.Set(row, toCol, -q*waterDensityG)
			return
		}
		coef := s.PumpCoeffs[li]
		_, dHead := constitutive.ModifiedPumpHead(coef, q)
		j.Set(row, qCol, -dHead)
		j.Set(row, toCol, 1)
		j.Set(row, fromCol, -1)
	default:
		mode := s.State.ValveModeOf[li]
		switch mode {
		case core.ValveActive:
			j.Set(row, toCol, 1)
		case core.ValveOpen:
			kv := valveKv(link.Valve)
			j.Set(row, qCol, 2*kv*math.Abs(q))
			j.Set(row, fromCol, -1)
			j.Set(row, toCol, 1)
		default:
			j.Set(row, qCol, 1)
		}
	}
}

func (s *System) fillMassBalanceJacobian(j *mat.Dense, row, ni int, nd *core.Node, x []float64) {
	if nd.Kind == core.KindJunction && s.isIsolated(ni) {
		j.Set(row, s.VI.Head(ni), 1)
		return
	}

	useCurrentFlows := true
	if nd.Kind == core.KindTank && !s.FirstStep {
		useCurrentFlows = false
	}
	if useCurrentFlows {
		for _, li := range s.Net.LinksFor(ni) {
			link := s.Net.Link(li)
			qCol := s.VI.Flow(li)
			if link.To == ni {
				j.Set(row, qCol, j.At(row, qCol)+1)
			}
			if link.From == ni {
				j.Set(row, qCol, j.At(row, qCol)-1)
			}
		}
	}
	switch nd.Kind {
	case core.KindJunction:
		if dVar, ok := s.VI.Demand(ni); ok {
			j.Set(row, dVar, -1)
		}
	case core.KindReservoir:
		if qVar, ok := s.VI.ReservoirFlow(ni); ok {
			j.Set(row, qVar, -1)
		}
	case core.KindTank:
		if iVar, ok := s.VI.TankInflow(ni); ok {
			j.Set(row, iVar, -1)
		}
	case core.KindLeak:
		if lVar, ok := s.VI.LeakDemand(ni); ok {
			j.Set(row, lVar, -1)
		}
	}
}

func (s *System) fillDemandLawJacobian(j *mat.Dense, row, ni int, x []float64) {
	dVar, _ := s.VI.Demand(ni)
	nd := s.Net.Node(ni)

	if s.isIsolated(ni) {
		j.Set(row, dVar, 1)
		return
	}
	required := s.Required[ni]
	if required == 0 {
		j.Set(row, dVar, 1)
		return
	}
	j.Set(row, dVar, 1)
	if s.Mode == PDD {
		hCol := s.VI.Head(ni)
		p := x[hCol] - nd.Junction.Elevation
		_, dD := constitutive.PDD(p, required, nd.Junction.P0, nd.Junction.PF)
		j.Set(row, hCol, -dD)
	}
}

func (s *System) fillLeakLawJacobian(j *mat.Dense, row, ni int, x []float64) {
	lVar, ok := s.VI.LeakDemand(ni)
	if !ok {
		return
	}
	nd := s.Net.Node(ni)
	hCol := s.VI.Head(ni)
	p := x[hCol] - nd.Leak.Elev
	_, dD := constitutive.LeakDemand(p, nd.Leak.Area, nd.Leak.Cd)
	j.Set(row, lVar, 1)
	j.Set(row, hCol, -dD)
}
