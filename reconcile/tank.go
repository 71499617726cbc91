package reconcile

import (
	"math"

	"github.com/hydrasolve/wntrgo/core"
)

// isPumpOrCVIntoTank reports whether link is a pump or check-valve pipe
// whose end node is the tank, exempting it from the tank-cutoff closure.
func isPumpOrCVIntoTank(link *core.Link, tankIdx int) bool {
	if link.To != tankIdx {
		return false
	}
	if link.Kind == core.KindPump {
		return true
	}
	return link.Kind == core.KindPipe && link.Pipe.BaseStatus == core.StatusCV
}

// applyTankCutoffPreclose predicts the next tank head from the last
// converged flows, and closes/reopens every adjacent link as the head
// crosses the tank's min level.
func applyTankCutoffPreclose(net *core.Network, state *core.SimState, dtSec float64) {
	for _, ni := range net.NodesOfKind(core.KindTank) {
		nd := net.Node(ni)
		minHead := nd.Tank.Elevation + nd.Tank.MinLevel
		curHead := state.LastTankHead[ni]

		var sumFlow float64
		for _, li := range net.LinksFor(ni) {
			link := net.Link(li)
			q := state.LastLinkFlow[li]
			if link.To == ni {
				sumFlow += q
			}
			if link.From == ni {
				sumFlow -= q
			}
		}
		predicted := curHead + (dtSec*4/(math.Pi*nd.Tank.Diameter*nd.Tank.Diameter))*sumFlow

		switch {
		case curHead >= minHead && predicted <= minHead:
			for _, li := range net.LinksFor(ni) {
				link := net.Link(li)
				if isPumpOrCVIntoTank(link, ni) {
					continue
				}
				state.ClosedByTankCutoff[li] = true
			}
		case curHead <= minHead && predicted >= minHead:
			for _, li := range net.LinksFor(ni) {
				delete(state.ClosedByTankCutoff, li)
			}
		}
	}
}

// applyTankCutoffPostsolve keeps, for any tank at min head, each adjacent
// link closed unless opening it would let water in (the neighbour's head
// exceeds tank head + HTol).
func applyTankCutoffPostsolve(net *core.Network, state *core.SimState, x []float64, headOf func(int) float64, opts Options) {
	for _, ni := range net.NodesOfKind(core.KindTank) {
		nd := net.Node(ni)
		minHead := nd.Tank.Elevation + nd.Tank.MinLevel
		tankHead := headOf(ni)
		if tankHead > minHead+opts.HTol {
			continue
		}
		for _, li := range net.LinksFor(ni) {
			link := net.Link(li)
			other := link.From
			if other == ni {
				other = link.To
			}
			neighborHead := headOf(other)
			if neighborHead > tankHead+opts.HTol {
				delete(state.ClosedByTankCutoff, li)
			} else {
				state.ClosedByTankCutoff[li] = true
			}
		}
	}
}
