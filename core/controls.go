package core

// TimeControl is a set of times (in seconds from simulation start) at
// which a link transitions, keyed by link name in Network.TimeControls. The
// slices keep the order entries were added in; they are not sorted.
type TimeControl struct {
	OpenTimes   []float64
	ClosedTimes []float64
	ActiveTimes []float64
}

// ConditionalControl is a list of (watched node, threshold head) triggers,
// in the order they were added, keyed by link name in
// Network.ConditionalControls.
type ConditionalControl struct {
	OpenAbove   []Threshold
	OpenBelow   []Threshold
	ClosedAbove []Threshold
	ClosedBelow []Threshold
}

// Threshold names the node whose head is watched and the head at which the
// control fires.
type Threshold struct {
	Node  string
	Value float64
}

// PumpOutage is a fixed [StartSec, EndSec] interval during which a pump is
// forced out of service (reconcile step 3).
type PumpOutage struct {
	StartSec float64
	EndSec   float64
}

// LeakWindow is a fixed [StartSec, EndSec) interval during which a leak is
// active (reconcile step 4). EndSec == 0 with StartSec == 0 means "always on".
type LeakWindow struct {
	StartSec float64
	EndSec   float64
}
