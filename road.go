package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

/* Roads stuff */

type RoadID int

type RestrictionType uint16

const (
	RESTRICTION_BAN_TURNS = RestrictionType(iota + 1)
	RESTRICTION_ONLY_ALLOW_TURNS
)

func (iotaIdx RestrictionType) String() string {
	return [...]string{"ban_turns", "only_allow_turns"}[iotaIdx-1]
}

// TurnRestriction forbids or exclusively allows turning from the owning road
// onto the target road.
type TurnRestriction struct {
	Type RestrictionType
	To   RoadID
}

// ViaRestriction bans turning through `via` onto `to`
type ViaRestriction struct {
	Via RoadID
	To  RoadID
}

// Road is a multi-lane segment between exactly two intersections. Geometry is
// kept in projected meters (EPSG:3857); `geom` preserves the imported WGS84
// line for exports.
type Road struct {
	ID RoadID

	sourceIntersectionID IntersectionID
	targetIntersectionID IntersectionID

	lanes []Lane

	geom          orb.LineString
	geomEuclidean orb.LineString

	// Derived by the intersection geometry algorithm. Never read these
	// directly; TrimmedCenterLine checks validity.
	trimStart     float64
	trimEnd       float64
	trimmedLine   orb.LineString
	geomValid     bool

	osmWayIDs []osm.WayID
	tags      osm.Tags

	name        string
	highway     string
	layer       int
	drivingSide DrivingSide

	turnRestrictions []TurnRestriction
	viaRestrictions  []ViaRestriction

	// Marked by the geometry algorithm when the trims from both ends consume
	// the whole road. CollapseShortRoads removes these.
	internalJunctionRoad bool
}

func (road *Road) SourceIntersectionID() IntersectionID {
	return road.sourceIntersectionID
}

func (road *Road) TargetIntersectionID() IntersectionID {
	return road.targetIntersectionID
}

func (road *Road) Lanes() []Lane {
	return road.lanes
}

func (road *Road) Tags() osm.Tags {
	return road.tags
}

// OSMWayIDs returns originating way identifiers. Empty for synthetic roads,
// more than one after merges.
func (road *Road) OSMWayIDs() []osm.WayID {
	return road.osmWayIDs
}

func (road *Road) endpoints() [2]IntersectionID {
	return [2]IntersectionID{road.sourceIntersectionID, road.targetIntersectionID}
}

func (road *Road) otherSide(i IntersectionID) IntersectionID {
	if road.sourceIntersectionID == i {
		return road.targetIntersectionID
	}
	return road.sourceIntersectionID
}

func (road *Road) touches(i IntersectionID) bool {
	return road.sourceIntersectionID == i || road.targetIntersectionID == i
}

// TotalWidth is the sum of lane widths; lanes are contiguous with no gaps
func (road *Road) TotalWidth() float64 {
	width := 0.0
	for _, lane := range road.lanes {
		width += lane.Width
	}
	return width
}

func (road *Road) halfWidth() float64 {
	return road.TotalWidth() / 2.0
}

func (road *Road) untrimmedLength() float64 {
	return lineLength(road.geomEuclidean)
}

// TrimmedCenterLine returns the derived center line in projected meters. It
// is only valid after GenerateIntersectionGeometry (or a targeted edit
// operation) has run since the last mutation.
func (road *Road) TrimmedCenterLine() (orb.LineString, error) {
	if !road.geomValid {
		return nil, ErrStaleGeometry
	}
	return road.trimmedLine, nil
}

func (road *Road) invalidateGeometry() {
	road.geomValid = false
	road.trimmedLine = nil
	road.trimStart = 0
	road.trimEnd = 0
}

// applyTrim recomputes the trimmed center line from the recorded per-end trim
// distances. When the trims eat the whole road, the road is marked as an
// internal junction artifact and keeps its untrimmed line.
func (road *Road) applyTrim() {
	trimmed, ok := exactSlice(road.geomEuclidean, road.trimStart, road.untrimmedLength()-road.trimEnd)
	if !ok {
		log.Warnw("road trimmed into oblivion, marking for collapse", "road", road.ID)
		road.internalJunctionRoad = true
		road.trimmedLine = road.geomEuclidean
		road.geomValid = true
		return
	}
	road.trimmedLine = trimmed
	road.geomValid = true
}

// centerTowards returns the untrimmed center line oriented to end at the
// given intersection.
func (road *Road) centerTowards(i IntersectionID) orb.LineString {
	if road.targetIntersectionID == i {
		return road.geomEuclidean
	}
	return reverseLine(road.geomEuclidean)
}

func (road *Road) isOneway() bool {
	_, oneway := onewayForDriving(road.lanes)
	return oneway
}

func (road *Road) isDriveable() bool {
	for _, lane := range road.lanes {
		if lane.Type == LANE_DRIVING {
			return true
		}
	}
	return false
}

func (road *Road) isLightRail() bool {
	for _, lane := range road.lanes {
		if lane.Type != LANE_LIGHT_RAIL && lane.Type != LANE_SHOULDER {
			return false
		}
	}
	return len(road.lanes) > 0 && road.lanes[0].Type == LANE_LIGHT_RAIL
}

// isCycleway reports whether the road carries only bike lanes (shoulders are
// tolerated around them)
func (road *Road) isCycleway() bool {
	bike := false
	for _, lane := range road.lanes {
		switch lane.Type {
		case LANE_BIKING:
			bike = true
		case LANE_SHOULDER:
		default:
			return false
		}
	}
	return bike
}

func (road *Road) isFootway() bool {
	for _, lane := range road.lanes {
		switch lane.Type {
		case LANE_FOOTWAY, LANE_SIDEWALK, LANE_SHARED_USE, LANE_SHOULDER:
		default:
			return false
		}
	}
	return len(road.lanes) > 0
}

func (road *Road) isSidepath() bool {
	return road.isCycleway() || road.isFootway()
}

func (road *Road) isLinkHighway() bool {
	switch road.highway {
	case "motorway", "motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link":
		return true
	}
	return false
}

// laneCenterLines returns the center of every lane, left to right, oriented
// in the direction of the road. Requires computed geometry.
func (road *Road) laneCenterLines() ([]orb.LineString, error) {
	center, err := road.TrimmedCenterLine()
	if err != nil {
		return nil, err
	}
	totalWidth := road.TotalWidth()
	output := make([]orb.LineString, 0, len(road.lanes))
	widthSoFar := 0.0
	for _, lane := range road.lanes {
		widthSoFar += lane.Width / 2.0
		shifted, ok := shiftLine(center, widthSoFar-totalWidth/2.0)
		if !ok {
			shifted = center
		}
		output = append(output, shifted)
		widthSoFar += lane.Width / 2.0
	}
	return output, nil
}

// untrimmedSides returns the left and right boundary of the full-width road,
// oriented in the road's direction.
func (road *Road) untrimmedSides() (orb.LineString, orb.LineString, bool) {
	left, okL := shiftLine(road.geomEuclidean, -road.halfWidth())
	right, okR := shiftLine(road.geomEuclidean, road.halfWidth())
	return left, right, okL && okR
}
