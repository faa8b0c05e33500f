package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

/* Intersections stuff */

type IntersectionID int

// IntersectionKind is a derived classification, recomputed whenever the
// connected-road set changes. It is never set externally.
type IntersectionKind uint16

const (
	// KIND_UNCLASSIFIED means classification hasn't run since the last change
	KIND_UNCLASSIFIED = IntersectionKind(iota)
	// KIND_MAP_EDGE is a single road leaving the clipped area
	KIND_MAP_EDGE
	// KIND_TERMINUS is a genuine dead end
	KIND_TERMINUS
	// KIND_CONNECTION joins exactly two roads with no conflicting movements
	KIND_CONNECTION
	// KIND_FORK merges/diverges more than two roads without crossing movements
	KIND_FORK
	// KIND_INTERSECTION is the general case with conflicting movements
	KIND_INTERSECTION
)

func (iotaIdx IntersectionKind) String() string {
	return [...]string{"unclassified", "map_edge", "terminus", "connection", "fork", "intersection"}[iotaIdx]
}

type ControlType uint16

const (
	CONTROL_UNCONTROLLED = ControlType(iota + 1)
	CONTROL_STOP_SIGN
	CONTROL_SIGNAL
)

func (iotaIdx ControlType) String() string {
	return [...]string{"uncontrolled", "stop_sign", "signal"}[iotaIdx-1]
}

// mergeTrimKey addresses one end of a road: true when the road's source end
// is the one touching the merged intersection.
type mergeTrimKey struct {
	road      RoadID
	sourceEnd bool
}

// Intersection is a junction, a map-edge stub or a synthetic merge point.
type Intersection struct {
	ID IntersectionID

	// Projected meters. The original place where OSM center lines meet; may
	// lose meaning after merges.
	point orb.Point

	// Derived polygon; polygonValid gates reads.
	polygon      orb.Ring
	polygonValid bool

	kind    IntersectionKind
	control ControlType

	// Set for synthetic intersections created where a road crosses the clip
	// boundary; classification pins these to KIND_MAP_EDGE.
	mapEdge bool

	// Connected roads in clockwise order (restored by sortRoads after every
	// adjacency change)
	roads []RoadID

	osmNodeIDs []osm.NodeID

	// Recorded pre-trim points for roads around a consolidated intersection,
	// written by CollapseShortRoads and consumed by the geometry algorithm.
	trimRoadsForMerging map[mergeTrimKey]orb.Point
}

func newIntersection(id IntersectionID, point orb.Point, control ControlType) *Intersection {
	return &Intersection{
		ID:                  id,
		point:               point,
		control:             control,
		roads:               []RoadID{},
		trimRoadsForMerging: make(map[mergeTrimKey]orb.Point),
	}
}

func (inter *Intersection) Kind() IntersectionKind {
	return inter.kind
}

func (inter *Intersection) Control() ControlType {
	return inter.control
}

func (inter *Intersection) Point() orb.Point {
	return inter.point
}

func (inter *Intersection) OSMNodeIDs() []osm.NodeID {
	return inter.osmNodeIDs
}

// Polygon returns the derived junction area in projected meters, or
// ErrStaleGeometry before geometry generation has run.
func (inter *Intersection) Polygon() (orb.Ring, error) {
	if !inter.polygonValid {
		return nil, ErrStaleGeometry
	}
	return inter.polygon, nil
}

func (inter *Intersection) invalidateGeometry() {
	inter.polygonValid = false
	inter.polygon = nil
}
