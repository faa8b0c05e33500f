package streetgraph

import (
	"github.com/pkg/errors"
)

var (
	// ErrStaleGeometry is returned when derived geometry (trimmed center line,
	// intersection polygon) is read before it has been (re)computed.
	ErrStaleGeometry = errors.New("derived geometry is stale; run GenerateIntersectionGeometry first")
	// ErrRoadNotFound is returned for lookups of unknown road identifiers
	ErrRoadNotFound = errors.New("no such road")
	// ErrIntersectionNotFound is returned for lookups of unknown intersection identifiers
	ErrIntersectionNotFound = errors.New("no such intersection")
	// ErrWayNotTracked is returned when no road traces back to a given OSM way
	ErrWayNotTracked = errors.New("OSM way is not tracked by any road")
	// ErrBlockNotClosed is returned when a block trace does not come back to its start
	ErrBlockNotClosed = errors.New("block trace did not close")
	// ErrTopology is returned when an operation would break bidirectional adjacency
	ErrTopology = errors.New("operation would violate road-intersection adjacency")
)
