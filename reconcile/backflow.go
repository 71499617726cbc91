package reconcile

import "github.com/hydrasolve/wntrgo/core"

// applyBackflow closes, for each link touching a reservoir, the link when
// flow runs into the reservoir beyond Options.QTol, and reopens it once the
// reservoir head is at or above the other node's head.
func applyBackflow(net *core.Network, state *core.SimState, flowOf func(int) float64, headOf func(int) float64, opts Options) {
	for _, ni := range net.NodesOfKind(core.KindReservoir) {
		reservoirHead := headOf(ni)
		for _, li := range net.LinksFor(ni) {
			link := net.Link(li)
			q := flowOf(li)

			var intoReservoir bool
			var other int
			if link.To == ni {
				intoReservoir = q > opts.QTol
				other = link.From
			} else {
				intoReservoir = -q > opts.QTol
				other = link.To
			}

			if intoReservoir {
				state.ClosedByBackflow[li] = true
				continue
			}
			if reservoirHead >= headOf(other) {
				delete(state.ClosedByBackflow, li)
			}
		}
	}
}
