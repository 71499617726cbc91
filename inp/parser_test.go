package inp_test

import (
	"strings"
	"testing"

	"github.com/hydrasolve/wntrgo/core"
	"github.com/hydrasolve/wntrgo/inp"
	"github.com/stretchr/testify/require"
)

const sampleINP = `
[JUNCTIONS]
;ID Elev Demand Pattern
J1  10   100    PAT1

[RESERVOIRS]
;ID Head
R1  328.08

[PIPES]
;ID Node1 Node2 Length Diameter Roughness MinorLoss Status
P1 R1 J1 3280.8 12 100 0 Open

[PATTERNS]
PAT1 1.0 0.8 1.2 1.0

[TIMES]
DURATION 24:00
HYDRAULIC TIMESTEP 1:00
PATTERN TIMESTEP 1:00

[OPTIONS]
UNITS GPM

[CONTROLS]
LINK P1 CLOSED AT TIME 5:00
LINK P1 OPEN AT TIME 10:00
`

func TestParse_SampleNetwork(t *testing.T) {
	res, err := inp.Parse(strings.NewReader(sampleINP))
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	require.InDelta(t, 86400, res.Config.DurationSec, 1e-9)
	require.InDelta(t, 3600, res.Config.StepSec, 1e-9)

	j1, err := res.Net.GetNode("J1")
	require.NoError(t, err)
	require.InDelta(t, 3.048, j1.Junction.Elevation, 1e-3)
	require.InDelta(t, 100*6.30902e-5, j1.Junction.BaseDemand, 1e-9)

	r1, err := res.Net.GetNode("R1")
	require.NoError(t, err)
	require.InDelta(t, 100, r1.Reservoir.Head, 1e-2)

	p1, err := res.Net.GetLink("P1")
	require.NoError(t, err)
	require.Equal(t, core.KindPipe, p1.Kind)
	require.InDelta(t, 1000, p1.Pipe.Length, 1)
	require.InDelta(t, 12*0.0254, p1.Pipe.Diameter, 1e-6)

	tc := res.Net.TimeControls["P1"]
	require.Equal(t, []float64{18000}, tc.ClosedTimes)
	require.Equal(t, []float64{36000}, tc.OpenTimes)
}

func TestParse_MissingUnitsIsFatal(t *testing.T) {
	_, err := inp.Parse(strings.NewReader("[JUNCTIONS]\nJ1 10 0\n"))
	require.ErrorIs(t, err, inp.ErrMissingUnits)
}

func TestParse_ConditionalControlUnknownNodeIsFatal(t *testing.T) {
	src := `
[OPTIONS]
UNITS GPM
[JUNCTIONS]
J1 10 0
[RESERVOIRS]
R1 100
[PIPES]
P1 R1 J1 1000 12 100
[CONTROLS]
LINK P1 CLOSED IF NODE ghost ABOVE 50
`
	_, err := inp.Parse(strings.NewReader(src))
	require.ErrorIs(t, err, inp.ErrUnknownReference)
}

func TestParse_UnsupportedControlIsWarningNotFatal(t *testing.T) {
	src := `
[OPTIONS]
UNITS GPM
[JUNCTIONS]
J1 10 0
[RESERVOIRS]
R1 100
[PIPES]
P1 R1 J1 1000 12 100
[CONTROLS]
RULE R1
`
	res, err := inp.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	var uc inp.UnsupportedControl
	require.ErrorAs(t, res.Warnings[0], &uc)
}
