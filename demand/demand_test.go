package demand_test

import (
	"testing"

	"github.com/hydrasolve/wntrgo/core"
	"github.com/hydrasolve/wntrgo/demand"
	"github.com/stretchr/testify/require"
)

func buildNet(t *testing.T) *core.Network {
	t.Helper()
	net := core.NewNetwork()
	net.AddPattern(core.Pattern{Name: "pat1", Multipliers: []float64{1.0, 0.5, 1.5}})
	_, err := net.AddNode(core.Node{
		Name: "J1", Kind: core.KindJunction,
		Junction: core.Junction{Elevation: 10, BaseDemand: 0.02, Pattern: "pat1", PF: 20, P0: 0},
	})
	require.NoError(t, err)
	_, err = net.AddNode(core.Node{
		Name: "J2", Kind: core.KindJunction,
		Junction: core.Junction{Elevation: 10, BaseDemand: 0.01},
	})
	require.NoError(t, err)
	_, err = net.AddNode(core.Node{Name: "R1", Kind: core.KindReservoir, Reservoir: core.Reservoir{Head: 100}})
	require.NoError(t, err)
	return net
}

func TestRequiredDemand_WithPattern(t *testing.T) {
	net := buildNet(t)
	idx, _ := net.NodeIndex("J1")

	require.InDelta(t, 0.02, demand.RequiredDemand(net, idx, 0, 3600), 1e-12)
	require.InDelta(t, 0.01, demand.RequiredDemand(net, idx, 3600, 3600), 1e-12)
	require.InDelta(t, 0.03, demand.RequiredDemand(net, idx, 7200, 3600), 1e-12)
	// wraps modulo length 3
	require.InDelta(t, 0.02, demand.RequiredDemand(net, idx, 3*3600, 3600), 1e-12)
}

func TestRequiredDemand_NoPattern(t *testing.T) {
	net := buildNet(t)
	idx, _ := net.NodeIndex("J2")
	require.InDelta(t, 0.01, demand.RequiredDemand(net, idx, 5000, 3600), 1e-12)
}

func TestReservoirHead_ConstantWithoutPattern(t *testing.T) {
	net := buildNet(t)
	idx, _ := net.NodeIndex("R1")
	require.InDelta(t, 100, demand.ReservoirHead(net, idx, 0, 3600), 1e-12)
	require.InDelta(t, 100, demand.ReservoirHead(net, idx, 99999, 3600), 1e-12)
}
