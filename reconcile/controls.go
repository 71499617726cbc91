package reconcile

import "github.com/hydrasolve/wntrgo/core"

// applyTimeControls adds or removes, for each link whose status schedule
// transitions between tPrev and t, an entry in ClosedByControls (or flips a
// valve to Active).
func applyTimeControls(net *core.Network, state *core.SimState, tPrev, t float64) {
	for name, tc := range net.TimeControls {
		li, err := net.LinkIndex(name)
		if err != nil {
			continue
		}
		for _, ot := range tc.OpenTimes {
			if crossed(tPrev, t, ot) {
				delete(state.ClosedByControls, li)
			}
		}
		for _, ct := range tc.ClosedTimes {
			if crossed(tPrev, t, ct) {
				state.ClosedByControls[li] = true
			}
		}
		for _, at := range tc.ActiveTimes {
			if crossed(tPrev, t, at) {
				state.ValveModeOf[li] = core.ValveActive
			}
		}
	}
}

func crossed(tPrev, t, mark float64) bool {
	return tPrev < mark && mark <= t
}

// applyConditionalControls uses heads from the last converged step to
// evaluate open_above/open_below/
// closed_above/closed_below and add/remove from ClosedByControls. Open rules
// are applied first, closed rules second, so a simultaneous trigger resolves
// to closed (a control that shuts a link off is the safer default to prefer
// when both fire in the same step).
func applyConditionalControls(net *core.Network, state *core.SimState) {
	for name, cc := range net.ConditionalControls {
		li, err := net.LinkIndex(name)
		if err != nil {
			continue
		}
		for _, th := range cc.OpenAbove {
			if headOf(net, state, th.Node) > th.Value {
				delete(state.ClosedByControls, li)
			}
		}
		for _, th := range cc.OpenBelow {
			if headOf(net, state, th.Node) < th.Value {
				delete(state.ClosedByControls, li)
			}
		}
		for _, th := range cc.ClosedAbove {
			if headOf(net, state, th.Node) > th.Value {
				state.ClosedByControls[li] = true
			}
		}
		for _, th := range cc.ClosedBelow {
			if headOf(net, state, th.Node) < th.Value {
				state.ClosedByControls[li] = true
			}
		}
	}
}

func headOf(net *core.Network, state *core.SimState, nodeName string) float64 {
	ni, err := net.NodeIndex(nodeName)
	if err != nil {
		return 0
	}
	return state.PrevHeads[ni]
}

// applyPumpOutages applies fixed outage intervals per pump, added to or
// removed from ClosedByOutage.
func applyPumpOutages(net *core.Network, state *core.SimState, t float64) {
	for name, o := range net.PumpOutages {
		li, err := net.LinkIndex(name)
		if err != nil {
			continue
		}
		if t >= o.StartSec && t <= o.EndSec {
			state.ClosedByOutage[li] = true
		} else {
			delete(state.ClosedByOutage, li)
		}
	}
}

// applyLeakActivation moves a leak between inactive_leaks and active_leaks
// according to its window.
func applyLeakActivation(net *core.Network, state *core.SimState, t float64) {
	for name, w := range net.LeakWindows {
		ni, err := net.NodeIndex(name)
		if err != nil {
			continue
		}
		alwaysOn := w.StartSec == 0 && w.EndSec == 0
		if alwaysOn || (t >= w.StartSec && t < w.EndSec) {
			if state.InactiveLeaks[ni] {
				delete(state.InactiveLeaks, ni)
				state.ActiveLeaks[ni] = true
			}
		} else {
			if state.ActiveLeaks[ni] {
				delete(state.ActiveLeaks, ni)
				state.InactiveLeaks[ni] = true
			}
		}
	}
}
