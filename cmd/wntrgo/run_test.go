package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const tinyINP = `
[JUNCTIONS]
J1 10 36 PAT1

[RESERVOIRS]
R1 100

[PIPES]
P1 R1 J1 1000 300 100 0 Open

[PATTERNS]
PAT1 1.0

[TIMES]
DURATION 2:00
HYDRAULIC TIMESTEP 1:00

[OPTIONS]
UNITS LPS
`

func writeTinyINP(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "net.inp")
	require.NoError(t, os.WriteFile(path, []byte(tinyINP), 0644))
	return path
}

func TestRunCmd_FullConvergenceExitsZero(t *testing.T) {
	path := writeTinyINP(t)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", path})

	err := root.Execute()
	require.NoError(t, err)
	require.Equal(t, exitOK, exitCodeFor(err))
	require.Contains(t, out.String(), "steps written")
}

func TestRunCmd_MissingFileExitsOne(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "/no/such/file.inp"})
	root.SilenceErrors = true
	root.SilenceUsage = true

	err := root.Execute()
	require.Error(t, err)
	require.Equal(t, exitInputError, exitCodeFor(err))
}

func TestRunCmd_UnknownModeExitsOne(t *testing.T) {
	path := writeTinyINP(t)
	root := newRootCmd()
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs([]string{"run", path, "--mode", "bogus"})

	err := root.Execute()
	require.Error(t, err)
	require.Equal(t, exitInputError, exitCodeFor(err))
}
