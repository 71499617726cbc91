package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hydrasolve/wntrgo/assembler"
	"github.com/hydrasolve/wntrgo/eps"
	"github.com/hydrasolve/wntrgo/inp"
	"github.com/hydrasolve/wntrgo/newton"
	"github.com/hydrasolve/wntrgo/reconcile"
	"github.com/spf13/cobra"
)

// Exit codes: 0 full convergence, 2 per-step solver failure with the last
// accepted step persisted, 1 input/parse errors.
const (
	exitOK          = 0
	exitInputError  = 1
	exitSolverError = 2
)

type runFlags struct {
	durationSec float64
	stepSec     float64
	mode        string
	out         string
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run <inp-file>",
		Short: "Run an extended-period hydraulic simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, args[0], flags)
		},
	}
	cmd.Flags().Float64Var(&flags.durationSec, "duration", 0, "simulation duration in seconds (defaults to the INP file's [TIMES] DURATION)")
	cmd.Flags().Float64Var(&flags.stepSec, "step", 0, "hydraulic timestep in seconds (defaults to the INP file's [TIMES] HYDRAULIC TIMESTEP)")
	cmd.Flags().StringVar(&flags.mode, "mode", "DD", "demand law: DD or PDD")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write a summary to this file instead of stdout")
	return cmd
}

func runSimulation(cmd *cobra.Command, path string, flags runFlags) error {
	f, err := os.Open(path)
	if err != nil {
		return exitError{exitInputError, fmt.Errorf("wntrgo: %w", err)}
	}
	defer f.Close()

	parsed, err := inp.Parse(f)
	if err != nil {
		return exitError{exitInputError, fmt.Errorf("wntrgo: %w", err)}
	}
	for _, w := range parsed.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), w)
	}

	mode, err := parseMode(flags.mode)
	if err != nil {
		return exitError{exitInputError, err}
	}

	duration := flags.durationSec
	if duration == 0 {
		duration = parsed.Config.DurationSec
	}
	step := flags.stepSec
	if step == 0 {
		step = parsed.Config.StepSec
	}

	cfg := eps.Config{
		DurationSec:    duration,
		StepSec:        step,
		PatternStepSec: parsed.Config.PatternStepSec,
		Mode:           mode,
		ReconcileOpts:  reconcile.DefaultOptions(),
		NewtonOpts:     newton.DefaultOptions(),
	}

	res := eps.Run(context.Background(), parsed.Net, cfg)
	if err := writeSummary(cmd, flags.out, res); err != nil {
		return exitError{exitInputError, err}
	}
	if res.Err != nil {
		return exitError{exitSolverError, fmt.Errorf("wntrgo: %w", res.Err)}
	}
	return nil
}

func parseMode(s string) (assembler.Mode, error) {
	switch s {
	case "DD", "dd":
		return assembler.DD, nil
	case "PDD", "pdd":
		return assembler.PDD, nil
	default:
		return 0, fmt.Errorf("wntrgo: unknown mode %q (want DD or PDD)", s)
	}
}

func writeSummary(cmd *cobra.Command, outPath string, res eps.Result) error {
	summary := fmt.Sprintf("steps written: %d\n", res.StepsWritten)
	if outPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), summary)
		return nil
	}
	return os.WriteFile(outPath, []byte(summary), 0644)
}

// exitError carries the process exit code assigned to a failure class,
// alongside the underlying error for cobra's default error printing.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitInputError
}
