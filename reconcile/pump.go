package reconcile

import "github.com/hydrasolve/wntrgo/core"

// applyLowSuctionTrip trips every pump whose suction node is not a
// reservoir when the suction head is at or below its elevation, and
// un-trips it once the suction head clears by a full meter — unless
// Options.AllowLowSuctionReopen is false, in which case a trip latches for
// the remainder of the run.
func applyLowSuctionTrip(net *core.Network, state *core.SimState, headOf func(int) float64, opts Options) {
	for _, li := range net.LinksOfKind(core.KindPump) {
		link := net.Link(li)
		suction := link.From
		if net.Node(suction).Kind == core.KindReservoir {
			continue
		}
		suctionHead := headOf(suction)
		elev := net.Node(suction).Elevation()

		if suctionHead <= elev+opts.HTol {
			state.ClosedByLowSuction[li] = true
			continue
		}
		if !opts.AllowLowSuctionReopen {
			continue
		}
		if suctionHead >= elev+1.0 {
			delete(state.ClosedByLowSuction, li)
		}
	}
}
