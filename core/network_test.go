package core_test

import (
	"testing"

	"github.com/hydrasolve/wntrgo/core"
	"github.com/stretchr/testify/require"
)

func buildTriangle(t *testing.T) *core.Network {
	t.Helper()
	net := core.NewNetwork()

	_, err := net.AddNode(core.Node{Name: "R1", Kind: core.KindReservoir, Reservoir: core.Reservoir{Head: 100}})
	require.NoError(t, err)
	_, err = net.AddNode(core.Node{Name: "J1", Kind: core.KindJunction, Junction: core.Junction{Elevation: 10, BaseDemand: 0.01, PF: 20, P0: 0}})
	require.NoError(t, err)
	_, err = net.AddNode(core.Node{Name: "J2", Kind: core.KindJunction, Junction: core.Junction{Elevation: 5, BaseDemand: 0.02, PF: 20, P0: 0}})
	require.NoError(t, err)

	_, err = net.AddLink(core.Link{Name: "P1", Kind: core.KindPipe, Pipe: core.Pipe{Length: 1000, Diameter: 0.3, Roughness: 100}}, "R1", "J1")
	require.NoError(t, err)
	_, err = net.AddLink(core.Link{Name: "P2", Kind: core.KindPipe, Pipe: core.Pipe{Length: 500, Diameter: 0.2, Roughness: 100}}, "J1", "J2")
	require.NoError(t, err)
	return net
}

func TestNetwork_GetNodeAndLink(t *testing.T) {
	net := buildTriangle(t)

	n, err := net.GetNode("J1")
	require.NoError(t, err)
	require.Equal(t, core.KindJunction, n.Kind)

	_, err = net.GetNode("nope")
	require.ErrorIs(t, err, core.ErrNodeNotFound)

	l, err := net.GetLink("P1")
	require.NoError(t, err)
	require.Equal(t, core.KindPipe, l.Kind)

	_, err = net.GetLink("nope")
	require.ErrorIs(t, err, core.ErrLinkNotFound)
}

func TestNetwork_LinksFor(t *testing.T) {
	net := buildTriangle(t)
	j1, err := net.NodeIndex("J1")
	require.NoError(t, err)

	links := net.LinksFor(j1)
	require.Len(t, links, 2)
}

func TestNetwork_DuplicateNameRejected(t *testing.T) {
	net := buildTriangle(t)
	_, err := net.AddNode(core.Node{Name: "J1", Kind: core.KindJunction})
	require.ErrorIs(t, err, core.ErrDuplicateName)
}

func TestNetwork_BadEndpointRejected(t *testing.T) {
	net := buildTriangle(t)
	_, err := net.AddLink(core.Link{Name: "Pbad", Kind: core.KindPipe}, "J1", "ghost")
	require.ErrorIs(t, err, core.ErrBadEndpoint)
}

func TestNetwork_TankLevelInvariant(t *testing.T) {
	net := core.NewNetwork()
	_, err := net.AddNode(core.Node{
		Name: "T1", Kind: core.KindTank,
		Tank: core.Tank{Elevation: 0, InitLevel: 5, MinLevel: 10, MaxLevel: 20, Diameter: 10},
	})
	require.ErrorIs(t, err, core.ErrBadTankLevels)
}

func TestNetwork_SplitPipeWithLeak(t *testing.T) {
	net := buildTriangle(t)

	leakIdx, err := net.SplitPipeWithLeak("P2", "leak1", 0.05, 0.75, 0)
	require.NoError(t, err)
	require.Equal(t, core.KindLeak, net.Node(leakIdx).Kind)

	_, err = net.GetLink("P2")
	require.ErrorIs(t, err, core.ErrLinkNotFound)

	a, err := net.GetLink("P2__A")
	require.NoError(t, err)
	require.InDelta(t, 250, a.Pipe.Length, 1e-9)

	b, err := net.GetLink("P2__B")
	require.NoError(t, err)
	require.InDelta(t, 250, b.Pipe.Length, 1e-9)
}

func TestNetwork_NodesOfKind(t *testing.T) {
	net := buildTriangle(t)
	require.Len(t, net.NodesOfKind(core.KindJunction), 2)
	require.Len(t, net.NodesOfKind(core.KindReservoir), 1)
}

func TestCurve_ValidatePumpCurve(t *testing.T) {
	good3 := core.Curve{Points: []core.CurvePoint{{0, 50}, {0.1, 40}, {0.2, 20}}}
	require.NoError(t, good3.ValidatePumpCurve())

	bad3 := core.Curve{Points: []core.CurvePoint{{0, 20}, {0.1, 40}, {0.2, 50}}}
	require.ErrorIs(t, bad3.ValidatePumpCurve(), core.ErrBadCurve)

	badLen := core.Curve{Points: []core.CurvePoint{{0, 20}, {0.1, 40}}}
	require.ErrorIs(t, badLen.ValidatePumpCurve(), core.ErrBadCurve)
}

func TestSimState_ClosedSetUnion(t *testing.T) {
	net := buildTriangle(t)
	s := core.NewSimState(net)
	s.ClosedByControls[0] = true
	s.ClosedByOutage[1] = true

	// ClosedByOutage is not part of the union: an outaged pump is modeled as
	// a zero-loss link, not a closed one.
	closed := s.ClosedSet()
	require.True(t, closed[0])
	require.False(t, closed[1])
	require.Len(t, closed, 1)
}
