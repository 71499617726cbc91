// Package report is the results sink for an extended-period run: two flat
// column stores, nodes × time and links × time, rather than a single
// multi-indexed table keyed by (entity, time) pairs.
package report

import "github.com/hydrasolve/wntrgo/core"

// NodeRecord is one node's snapshot at one reporting step.
type NodeRecord struct {
	Name           string
	Kind           core.NodeKind
	Head           float64
	Pressure       float64
	RequiredDemand float64
	ActualDemand   float64
}

// LinkRecord is one link's snapshot at one reporting step. Velocity is
// always 0 for non-pipe links.
type LinkRecord struct {
	Name     string
	Kind     core.LinkKind
	Flow     float64
	Velocity float64
}

// NodeSeries stores one field per contiguous slice, row-major by reporting
// step, rather than a NodeRecord per (node, time) pair. StepView hands back
// an iterator-friendly slice without owning the underlying arrays.
type NodeSeries struct {
	Names []string
	Kinds []core.NodeKind
	Times []float64

	head           []float64
	pressure       []float64
	requiredDemand []float64
	actualDemand   []float64
}

// NewNodeSeries fixes the node order (by arena index) for the life of the series.
func NewNodeSeries(names []string, kinds []core.NodeKind) *NodeSeries {
	return &NodeSeries{Names: names, Kinds: kinds}
}

// AppendStep records one reporting step; each slice must be in the same
// node order as Names/Kinds.
func (s *NodeSeries) AppendStep(t float64, head, pressure, requiredDemand, actualDemand []float64) {
	s.Times = append(s.Times, t)
	s.head = append(s.head, head...)
	s.pressure = append(s.pressure, pressure...)
	s.requiredDemand = append(s.requiredDemand, requiredDemand...)
	s.actualDemand = append(s.actualDemand, actualDemand...)
}

// NumSteps reports how many reporting steps have been appended.
func (s *NodeSeries) NumSteps() int { return len(s.Times) }

// StepView returns every node's record for reporting step idx.
func (s *NodeSeries) StepView(step int) []NodeRecord {
	n := len(s.Names)
	base := step * n
	out := make([]NodeRecord, n)
	for i, name := range s.Names {
		out[i] = NodeRecord{
			Name:           name,
			Kind:           s.Kinds[i],
			Head:           s.head[base+i],
			Pressure:       s.pressure[base+i],
			RequiredDemand: s.requiredDemand[base+i],
			ActualDemand:   s.actualDemand[base+i],
		}
	}
	return out
}

// NodeView returns one node's full time series by its arena index.
func (s *NodeSeries) NodeView(nodeIdx int) []NodeRecord {
	n := len(s.Names)
	out := make([]NodeRecord, len(s.Times))
	for step := range s.Times {
		i := step*n + nodeIdx
		out[step] = NodeRecord{
			Name:           s.Names[nodeIdx],
			Kind:           s.Kinds[nodeIdx],
			Head:           s.head[i],
			Pressure:       s.pressure[i],
			RequiredDemand: s.requiredDemand[i],
			ActualDemand:   s.actualDemand[i],
		}
	}
	return out
}

// LinkSeries is the link-side counterpart to NodeSeries.
type LinkSeries struct {
	Names []string
	Kinds []core.LinkKind
	Times []float64

	flow     []float64
	velocity []float64
}

// NewLinkSeries fixes the link order (by arena index) for the life of the series.
func NewLinkSeries(names []string, kinds []core.LinkKind) *LinkSeries {
	return &LinkSeries{Names: names, Kinds: kinds}
}

// AppendStep records one reporting step; each slice must be in the same
// link order as Names/Kinds.
func (s *LinkSeries) AppendStep(t float64, flow, velocity []float64) {
	s.Times = append(s.Times, t)
	s.flow = append(s.flow, flow...)
	s.velocity = append(s.velocity, velocity...)
}

// NumSteps reports how many reporting steps have been appended.
func (s *LinkSeries) NumSteps() int { return len(s.Times) }

// StepView returns every link's record for reporting step idx.
func (s *LinkSeries) StepView(step int) []LinkRecord {
	n := len(s.Names)
	base := step * n
	out := make([]LinkRecord, n)
	for i, name := range s.Names {
		out[i] = LinkRecord{
			Name:     name,
			Kind:     s.Kinds[i],
			Flow:     s.flow[base+i],
			Velocity: s.velocity[base+i],
		}
	}
	return out
}

// LinkView returns one link's full time series by its arena index.
func (s *LinkSeries) LinkView(linkIdx int) []LinkRecord {
	n := len(s.Names)
	out := make([]LinkRecord, len(s.Times))
	for step := range s.Times {
		i := step*n + linkIdx
		out[step] = LinkRecord{
			Name:     s.Names[linkIdx],
			Kind:     s.Kinds[linkIdx],
			Flow:     s.flow[i],
			Velocity: s.velocity[i],
		}
	}
	return out
}
