package core

// ValveMode is the operating mode of a PRV.
type ValveMode uint8

const (
	ValveOpen ValveMode = iota
	ValveClosed
	ValveActive
)

func (m ValveMode) String() string {
	switch m {
	case ValveOpen:
		return "Open"
	case ValveClosed:
		return "Closed"
	case ValveActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// SimState is the single mutable value threaded through the per-timestep
// trial loop. Everything the reconciler tracks between trials and between
// timesteps lives here; the Network itself never mutates during a run.
//
// closed_by_* sets are keyed by link index for O(1) membership tests in the
// hot assembly loop.
type SimState struct {
	TimeSec float64

	LastTankHead map[int]float64 // node index -> head, carried across steps
	LastLinkFlow map[int]float64 // link index -> flow; the *next* step's tank mass balance uses these previous-step flows (explicit integration, a known numerical approximation)

	ClosedByControls    map[int]bool
	ClosedByOutage      map[int]bool
	ClosedByTankCutoff  map[int]bool
	ClosedByBackflow    map[int]bool
	ClosedByLowSuction  map[int]bool
	CheckValveClosed    map[int]bool

	ValveModeOf map[int]ValveMode

	ActiveLeaks   map[int]bool // node index -> active
	InactiveLeaks map[int]bool

	// Prior converged variable values, used to seed the next Newton solve.
	PrevHeads  map[int]float64
	PrevFlows  map[int]float64
	PrevDemand map[int]float64
}

// NewSimState returns an empty SimState with all maps initialized, pipes
// whose BaseStatus is Closed seeded into ClosedByControls, and every valve
// set to Open mode. Check-valve pipes start open; CheckValveClosed is empty.
func NewSimState(net *Network) *SimState {
	s := &SimState{
		LastTankHead:       make(map[int]float64),
		LastLinkFlow:       make(map[int]float64),
		ClosedByControls:   make(map[int]bool),
		ClosedByOutage:     make(map[int]bool),
		ClosedByTankCutoff: make(map[int]bool),
		ClosedByBackflow:   make(map[int]bool),
		ClosedByLowSuction: make(map[int]bool),
		CheckValveClosed:   make(map[int]bool),
		ValveModeOf:        make(map[int]ValveMode),
		ActiveLeaks:        make(map[int]bool),
		InactiveLeaks:      make(map[int]bool),
		PrevHeads:          make(map[int]float64),
		PrevFlows:          make(map[int]float64),
		PrevDemand:         make(map[int]float64),
	}
	for i, l := range net.Links() {
		if l.Kind == KindPipe && l.Pipe.BaseStatus == StatusClosed {
			s.ClosedByControls[i] = true
		}
		if l.Kind == KindValve {
			s.ValveModeOf[i] = ValveOpen
		}
	}
	for i, nd := range net.Nodes() {
		if nd.Kind == KindLeak {
			s.InactiveLeaks[i] = true
		}
		if nd.Kind == KindTank {
			s.LastTankHead[i] = nd.Tank.Elevation + nd.Tank.InitLevel
		}
	}
	return s
}

// ClosedSet computes the union closed_by_backflow ∪ closed_by_controls ∪
// closed_by_tank_cutoff ∪ closed_check_valves ∪ closed_by_low_suction.
// ClosedByOutage is deliberately NOT part of this union: a pump on outage
// is not "closed" (q=0) in the equation assembler's sense, it is replaced
// by a zero-loss-pipe equation, so the assembler consults ClosedByOutage
// separately only for pump links.
func (s *SimState) ClosedSet() map[int]bool {
	out := make(map[int]bool, len(s.ClosedByControls))
	for i := range s.ClosedByBackflow {
		out[i] = true
	}
	for i := range s.ClosedByControls {
		out[i] = true
	}
	for i := range s.ClosedByTankCutoff {
		out[i] = true
	}
	for i := range s.CheckValveClosed {
		out[i] = true
	}
	for i := range s.ClosedByLowSuction {
		out[i] = true
	}
	return out
}

// Clone deep-copies state for comparison across trials (change detection).
func (s *SimState) Clone() *SimState {
	c := &SimState{
		LastTankHead:       cloneF(s.LastTankHead),
		LastLinkFlow:       cloneF(s.LastLinkFlow),
		ClosedByControls:   cloneB(s.ClosedByControls),
		ClosedByOutage:     cloneB(s.ClosedByOutage),
		ClosedByTankCutoff: cloneB(s.ClosedByTankCutoff),
		ClosedByBackflow:   cloneB(s.ClosedByBackflow),
		ClosedByLowSuction: cloneB(s.ClosedByLowSuction),
		CheckValveClosed:   cloneB(s.CheckValveClosed),
		ValveModeOf:        make(map[int]ValveMode, len(s.ValveModeOf)),
		ActiveLeaks:        cloneB(s.ActiveLeaks),
		InactiveLeaks:      cloneB(s.InactiveLeaks),
		PrevHeads:          cloneF(s.PrevHeads),
		PrevFlows:          cloneF(s.PrevFlows),
		PrevDemand:         cloneF(s.PrevDemand),
		TimeSec:            s.TimeSec,
	}
	for k, v := range s.ValveModeOf {
		c.ValveModeOf[k] = v
	}
	return c
}

func cloneB(m map[int]bool) map[int]bool {
	c := make(map[int]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneF(m map[int]float64) map[int]float64 {
	c := make(map[int]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// DiscreteEqual reports whether two states have identical discrete
// (closed-set / valve-mode) content, used by the reconciler to detect a
// fixed point: if any closed/open set or valve mode changed between
// trials, another trial is required; otherwise the step is accepted.
func DiscreteEqual(a, b *SimState) bool {
	return boolMapEqual(a.ClosedByControls, b.ClosedByControls) &&
		boolMapEqual(a.ClosedByOutage, b.ClosedByOutage) &&
		boolMapEqual(a.ClosedByTankCutoff, b.ClosedByTankCutoff) &&
		boolMapEqual(a.ClosedByBackflow, b.ClosedByBackflow) &&
		boolMapEqual(a.ClosedByLowSuction, b.ClosedByLowSuction) &&
		boolMapEqual(a.CheckValveClosed, b.CheckValveClosed) &&
		boolMapEqual(a.ActiveLeaks, b.ActiveLeaks) &&
		valveMapEqual(a.ValveModeOf, b.ValveModeOf)
}

func boolMapEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func valveMapEqual(a, b map[int]ValveMode) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
