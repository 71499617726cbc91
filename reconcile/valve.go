package reconcile

import "github.com/hydrasolve/wntrgo/core"

// applyCheckValves closes a CV pipe when the downstream head exceeds the
// upstream head by more than HTol, or flow runs backward beyond QTol;
// reopens it otherwise.
func applyCheckValves(net *core.Network, state *core.SimState, flowOf func(int) float64, headOf func(int) float64, opts Options) {
	for _, li := range net.LinksOfKind(core.KindPipe) {
		link := net.Link(li)
		if link.Pipe.BaseStatus != core.StatusCV {
			continue
		}
		q := flowOf(li)
		hFrom, hTo := headOf(link.From), headOf(link.To)

		if hTo-hFrom > opts.HTol || q < -opts.QTol {
			state.CheckValveClosed[li] = true
		} else {
			delete(state.CheckValveClosed, li)
		}
	}
}

// applyValveModeTransitions runs the standard EPANET PRV state machine,
// keyed off H_sp = setting + elev(from).
func applyValveModeTransitions(net *core.Network, state *core.SimState, flowOf func(int) float64, headOf func(int) float64, opts Options) {
	for _, li := range net.LinksOfKind(core.KindValve) {
		link := net.Link(li)
		if link.Valve.Kind != core.ValvePRV {
			continue
		}
		q := flowOf(li)
		hFrom, hTo := headOf(link.From), headOf(link.To)
		fromElev := net.Node(link.From).Elevation()
		hSp := link.Valve.Setting + fromElev

		switch state.ValveModeOf[li] {
		case core.ValveActive:
			switch {
			case q < -opts.QTol:
				state.ValveModeOf[li] = core.ValveClosed
			case hFrom < hSp-opts.HTol:
				state.ValveModeOf[li] = core.ValveOpen
			}
		case core.ValveOpen:
			switch {
			case q < -opts.QTol:
				state.ValveModeOf[li] = core.ValveClosed
			case hFrom > hSp+opts.HTol:
				state.ValveModeOf[li] = core.ValveActive
			}
		case core.ValveClosed:
			switch {
			case hFrom > hTo+opts.HTol && hFrom < hSp-opts.HTol:
				state.ValveModeOf[li] = core.ValveOpen
			case hFrom > hTo+opts.HTol && hTo < hSp-opts.HTol:
				state.ValveModeOf[li] = core.ValveActive
			}
		}
	}
}
