// Package demand evaluates required demand and pattern-modulated head at a
// given simulation time.
package demand

import (
	"math"

	"github.com/hydrasolve/wntrgo/core"
)

// PatternStep returns ⌊t / patternStep⌋, the index (before modulo) used to
// sample a Pattern at simulation time t seconds.
func PatternStep(t, patternStep float64) int {
	if patternStep <= 0 {
		return 0
	}
	return int(math.Floor(t / patternStep))
}

// RequiredDemand returns base_demand(j) · pattern(j)[step mod L] when j has a
// bound pattern, else the base demand unchanged. Negative base demands are
// preserved (treated as sinks), never clamped.
func RequiredDemand(net *core.Network, nodeIdx int, t, patternStep float64) float64 {
	nd := net.Node(nodeIdx)
	j := nd.Junction
	if j.Pattern == "" {
		return j.BaseDemand
	}
	p, ok := net.Pattern(j.Pattern)
	if !ok {
		return j.BaseDemand
	}
	step := PatternStep(t, patternStep)
	return j.BaseDemand * p.At(step)
}

// ReservoirHead returns the reservoir's head at time t, pattern-modulated
// only if a pattern is explicitly bound: reservoir head is treated as
// constant unless a pattern is explicitly bound, never inferred.
func ReservoirHead(net *core.Network, nodeIdx int, t, patternStep float64) float64 {
	nd := net.Node(nodeIdx)
	r := nd.Reservoir
	if r.Pattern == "" {
		return r.Head
	}
	p, ok := net.Pattern(r.Pattern)
	if !ok {
		return r.Head
	}
	step := PatternStep(t, patternStep)
	return r.Head * p.At(step)
}
