// Package reconcile implements the per-timestep discrete-state reconciler:
// the trial loop that reconciles valve mode, check-valve status, pump
// outages/trips, tank-level cutoffs, and time/conditional controls with the
// continuous Newton solution, re-solving until a fixed point or until
// MaxTrials is exhausted.
package reconcile

// Options tunes the reconciler's tolerances and trial budget.
type Options struct {
	MaxTrials    int
	HTol         float64 // head tolerance governing discrete switching
	QTol         float64 // flow tolerance governing discrete switching
	PumpZeroFlow float64

	// AllowLowSuctionReopen makes low-suction pump trips reversible rather
	// than latching permanently once tripped. Exposed as an explicit knob
	// since either policy is defensible and networks differ.
	AllowLowSuctionReopen bool
}

// DefaultOptions returns the tolerance set used throughout, with
// AllowLowSuctionReopen enabled (the more permissive choice, matching the
// reconciler's general philosophy of resolving to a fixed point rather than
// latching a trip permanently).
func DefaultOptions() Options {
	return Options{
		MaxTrials:             10,
		HTol:                  1.5e-4,
		QTol:                  2.8e-5,
		PumpZeroFlow:          2.8e-11,
		AllowLowSuctionReopen: true,
	}
}
