package inp

import (
	"errors"
	"fmt"
)

// ErrMalformedLine marks a data line that doesn't have the expected field count.
var ErrMalformedLine = errors.New("inp: malformed line")

// ErrMissingUnits is returned when [OPTIONS] has no UNITS entry; every
// physical quantity the parser converts depends on knowing the unit family.
var ErrMissingUnits = errors.New("inp: missing UNITS option")

// ErrUnknownReference marks a PIPES/PUMPS/VALVES/CONTROLS line naming a node
// or link that was never declared.
var ErrUnknownReference = errors.New("inp: unknown reference")

// UnsupportedControl is a non-fatal diagnostic: a CONTROLS line using a
// grammar this parser doesn't model (e.g. a multi-clause rule-based
// control). The line is skipped, not rejected.
type UnsupportedControl struct {
	LineNo int
	Text   string
}

func (e UnsupportedControl) Error() string {
	return fmt.Sprintf("inp: unsupported control at line %d: %q", e.LineNo, e.Text)
}
