// Package core defines the central Network, Node, and Link types for a
// pressurized water distribution model.
//
// A Network is an arena of nodes and links: Vec-backed slices plus name→index
// maps, rather than a web of pointers between nodes and links. Links store
// the indices of their endpoints; anything that used to be a back-reference
// ("which links touch this node") is a lookup through the adjacency index
// instead. Node and Link are tagged unions (Junction/Reservoir/Tank/Leak and
// Pipe/Pump/Valve) so the equation assembler can switch on Kind without
// virtual dispatch.
//
// Patterns and curves are immutable lookup tables shared by reference once a
// Network is built. The only thing that mutates during a run is a SimState
// value threaded through the solver — never the Network itself.
package core

import "errors"

// Sentinel errors for network construction and lookup.
var (
	// ErrEmptyName indicates a node or link was given an empty name.
	ErrEmptyName = errors.New("core: name is empty")

	// ErrDuplicateName indicates a node or link name was already registered.
	ErrDuplicateName = errors.New("core: duplicate name")

	// ErrNodeNotFound indicates a lookup referenced a node that doesn't exist.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrLinkNotFound indicates a lookup referenced a link that doesn't exist.
	ErrLinkNotFound = errors.New("core: link not found")

	// ErrBadEndpoint indicates a link referenced a node that isn't in the network.
	ErrBadEndpoint = errors.New("core: link endpoint does not reference an existing node")

	// ErrBadTankLevels indicates a tank's min/init/max levels are not ordered min ≤ init ≤ max.
	ErrBadTankLevels = errors.New("core: tank levels must satisfy min_level <= init_level <= max_level")

	// ErrBadCurve indicates a pump curve has neither 1 nor 3 points, or is a
	// 3-point curve whose first point does not have the largest head.
	ErrBadCurve = errors.New("core: pump curve must have 1 or 3 points")

	// ErrNotAPipe indicates an operation expecting a pipe was given a different link kind.
	ErrNotAPipe = errors.New("core: link is not a pipe")
)
