// Package assembler builds the residual F(x) and Jacobian J(x) of the
// per-timestep nonlinear hydraulic system from a Network and the discrete
// state the reconciler currently holds.
package assembler

import "github.com/hydrasolve/wntrgo/core"

// Mode selects the demand law.
type Mode uint8

const (
	// DD is demand-driven: d_j = D_required(j, t) unconditionally.
	DD Mode = iota
	// PDD is pressure-driven: d_j = Φ(H_j - elev_j; D_required, PF, P0).
	PDD
)

// VarIndex lays out the flat unknown vector x for one timestep:
//
//	[0, N)                         node heads, indexed by node arena index
//	[N, N+L)                       link flows, indexed by link arena index
//	[N+L, N+L+J)                   junction demands d_j
//	[N+L+J, N+L+J+R)               reservoir flows q_r
//	[N+L+J+R, N+L+J+R+Tk)          tank net inflows I_t
//	[N+L+J+R+Tk, N+L+J+R+Tk+Ak)    active-leak demands L_k
//
// Jacobian sparsity is exactly the link-incidence pattern plus diagonals for
// the demand/leak/tank constraint rows; VarIndex is what turns "node idx" /
// "link idx" into a row/column in that matrix.
type VarIndex struct {
	NumNodes int
	NumLinks int

	demandVar   map[int]int // junction node idx -> var idx
	reservoirVar map[int]int
	tankVar      map[int]int
	leakVar      map[int]int // active leaks only

	Size int
}

// NewVarIndex builds the layout for a network given which leak nodes are
// currently active.
func NewVarIndex(net *core.Network, activeLeaks map[int]bool) *VarIndex {
	vi := &VarIndex{
		NumNodes:     net.NumNodes(),
		NumLinks:     net.NumLinks(),
		demandVar:    make(map[int]int),
		reservoirVar: make(map[int]int),
		tankVar:      make(map[int]int),
		leakVar:      make(map[int]int),
	}
	next := vi.NumNodes + vi.NumLinks
	for i, nd := range net.Nodes() {
		switch nd.Kind {
		case core.KindJunction:
			vi.demandVar[i] = next
			next++
		}
	}
	for i, nd := range net.Nodes() {
		if nd.Kind == core.KindReservoir {
			vi.reservoirVar[i] = next
			next++
		}
	}
	for i, nd := range net.Nodes() {
		if nd.Kind == core.KindTank {
			vi.tankVar[i] = next
			next++
		}
	}
	for i, nd := range net.Nodes() {
		if nd.Kind == core.KindLeak && activeLeaks[i] {
			vi.leakVar[i] = next
			next++
		}
	}
	vi.Size = next
	return vi
}

// Head returns the column index of node i's head variable.
func (vi *VarIndex) Head(i int) int { return i }

// Flow returns the column index of link i's flow variable.
func (vi *VarIndex) Flow(i int) int { return vi.NumNodes + i }

// Demand returns the column index of junction node i's demand variable and
// whether one exists.
func (vi *VarIndex) Demand(i int) (int, bool) { v, ok := vi.demandVar[i]; return v, ok }

// ReservoirFlow returns the column index of reservoir node i's flow variable.
func (vi *VarIndex) ReservoirFlow(i int) (int, bool) { v, ok := vi.reservoirVar[i]; return v, ok }

// TankInflow returns the column index of tank node i's net-inflow variable.
func (vi *VarIndex) TankInflow(i int) (int, bool) { v, ok := vi.tankVar[i]; return v, ok }

// LeakDemand returns the column index of active leak node i's demand variable.
func (vi *VarIndex) LeakDemand(i int) (int, bool) { v, ok := vi.leakVar[i]; return v, ok }
