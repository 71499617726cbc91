package reconcile

import "errors"

// ErrMaxTrialsExceeded is a fatal per-timestep error: the discrete state
// never reached a fixed point within Options.MaxTrials.
var ErrMaxTrialsExceeded = errors.New("reconcile: discrete state did not converge within MaxTrials")
