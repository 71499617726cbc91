package units_test

import (
	"testing"

	"github.com/hydrasolve/wntrgo/units"
	"github.com/stretchr/testify/require"
)

func TestFlowToSI(t *testing.T) {
	f, err := units.FlowToSI(units.GPM)
	require.NoError(t, err)
	require.InDelta(t, 6.30902e-5, f, 1e-12)

	_, err = units.FlowToSI("bogus")
	require.ErrorIs(t, err, units.ErrUnknownFlowUnit)
}

func TestIsUSCustomary(t *testing.T) {
	require.True(t, units.IsUSCustomary(units.GPM))
	require.False(t, units.IsUSCustomary(units.LPS))
}

func TestPipeDiameterToSI(t *testing.T) {
	require.InDelta(t, 0.0254*12, units.PipeDiameterToSI(12, true), 1e-9)
	require.InDelta(t, 0.3, units.PipeDiameterToSI(300, false), 1e-9)
}
