package streetgraph

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// StreetNetwork is the aggregate root owning all roads and intersections.
// Identifiers are opaque handles minted by the network; OSM way/node IDs are
// carried as provenance only, since merges and splits make the mapping
// many-to-many.
type StreetNetwork struct {
	roads         map[RoadID]*Road
	intersections map[IntersectionID]*Intersection

	// Clip boundary in projected meters; empty when the import wasn't clipped
	boundary orb.Ring

	options Options
	limits  thresholds

	nextRoadID         RoadID
	nextIntersectionID IntersectionID

	debugSteps []*DebugStep
	geomStats  GeometryStats
}

// GeometryStats counts geometric degeneracies recovered during the most
// recent full polygon generation. They're recovered silently but should stay
// visible.
type GeometryStats struct {
	ClampedTrims     int
	BowtiePolygons   int
	FallbackPolygons int
}

func NewStreetNetwork(options Options) *StreetNetwork {
	return &StreetNetwork{
		roads:         make(map[RoadID]*Road),
		intersections: make(map[IntersectionID]*Intersection),
		options:       options,
		limits:        loadThresholds(),
	}
}

func (net *StreetNetwork) Options() Options {
	return net.options
}

func (net *StreetNetwork) GeometryStats() GeometryStats {
	return net.geomStats
}

func (net *StreetNetwork) RoadsNum() int {
	return len(net.roads)
}

func (net *StreetNetwork) IntersectionsNum() int {
	return len(net.intersections)
}

func (net *StreetNetwork) Road(id RoadID) (*Road, error) {
	road, ok := net.roads[id]
	if !ok {
		return nil, errors.Wrapf(ErrRoadNotFound, "road %d", id)
	}
	return road, nil
}

func (net *StreetNetwork) Intersection(id IntersectionID) (*Intersection, error) {
	inter, ok := net.intersections[id]
	if !ok {
		return nil, errors.Wrapf(ErrIntersectionNotFound, "intersection %d", id)
	}
	return inter, nil
}

// roadIDsSorted gives a deterministic iteration order over roads
func (net *StreetNetwork) roadIDsSorted() []RoadID {
	ids := make([]RoadID, 0, len(net.roads))
	for id := range net.roads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (net *StreetNetwork) intersectionIDsSorted() []IntersectionID {
	ids := make([]IntersectionID, 0, len(net.intersections))
	for id := range net.intersections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddIntersection creates an intersection at the given projected point
func (net *StreetNetwork) AddIntersection(point orb.Point, control ControlType) *Intersection {
	id := net.nextIntersectionID
	net.nextIntersectionID++
	inter := newIntersection(id, point, control)
	net.intersections[id] = inter
	return inter
}

// AddRoad creates a road between two existing, distinct intersections and
// restores clockwise ordering at both. Geometry must run from source to
// target in projected meters.
func (net *StreetNetwork) AddRoad(source, target IntersectionID, geom orb.LineString, lanes []Lane, tags osm.Tags) (*Road, error) {
	if source == target {
		return nil, errors.Wrapf(ErrTopology, "road endpoints must differ, got %d twice", source)
	}
	if _, ok := net.intersections[source]; !ok {
		return nil, errors.Wrapf(ErrTopology, "source intersection %d does not exist", source)
	}
	if _, ok := net.intersections[target]; !ok {
		return nil, errors.Wrapf(ErrTopology, "target intersection %d does not exist", target)
	}
	if len(geom) < 2 {
		return nil, errors.Wrap(ErrTopology, "road geometry needs at least two points")
	}
	id := net.nextRoadID
	net.nextRoadID++
	road := &Road{
		ID:                   id,
		sourceIntersectionID: source,
		targetIntersectionID: target,
		lanes:                lanes,
		geom:                 lineToWGS84(geom),
		geomEuclidean:        geom,
		tags:                 tags,
		name:                 tags.Find("name"),
		highway:              tags.Find("highway"),
		drivingSide:          net.options.DrivingSide,
	}
	net.roads[id] = road
	net.attachRoad(road)
	return road, nil
}

// attachRoad wires an already-built road into both endpoints' adjacency
func (net *StreetNetwork) attachRoad(road *Road) {
	for _, i := range road.endpoints() {
		inter := net.intersections[i]
		inter.roads = append(inter.roads, road.ID)
		inter.kind = KIND_UNCLASSIFIED
		net.sortRoads(i)
		net.invalidateIntersection(i)
	}
	road.invalidateGeometry()
}

// RemoveRoad detaches the road from both endpoints and returns it. Adjacency
// stays consistent; the intersections survive (possibly with zero roads).
func (net *StreetNetwork) RemoveRoad(id RoadID) (*Road, error) {
	road, ok := net.roads[id]
	if !ok {
		return nil, errors.Wrapf(ErrRoadNotFound, "road %d", id)
	}
	for _, i := range road.endpoints() {
		inter := net.intersections[i]
		filtered := inter.roads[:0]
		for _, r := range inter.roads {
			if r != id {
				filtered = append(filtered, r)
			}
		}
		inter.roads = filtered
		inter.kind = KIND_UNCLASSIFIED
		net.invalidateIntersection(i)
	}
	delete(net.roads, id)
	return road, nil
}

// DeleteIntersection removes an intersection that no road references anymore
func (net *StreetNetwork) DeleteIntersection(id IntersectionID) error {
	inter, ok := net.intersections[id]
	if !ok {
		return errors.Wrapf(ErrIntersectionNotFound, "intersection %d", id)
	}
	if len(inter.roads) > 0 {
		return errors.Wrapf(ErrTopology, "intersection %d still has %d roads", id, len(inter.roads))
	}
	delete(net.intersections, id)
	return nil
}

// RoadsPerIntersection returns connected roads in clockwise angular order as
// they'll be drawn. The ordering is load-bearing for the geometry algorithm
// and block tracing.
func (net *StreetNetwork) RoadsPerIntersection(id IntersectionID) []RoadID {
	inter, ok := net.intersections[id]
	if !ok {
		return nil
	}
	out := make([]RoadID, len(inter.roads))
	copy(out, inter.roads)
	return out
}

// sortRoads restores the clockwise ordering invariant at one intersection.
// Sorting uses a point walked back along each road by the shortest connected
// road's length; sorting on the farthest point misorders bending roads.
func (net *StreetNetwork) sortRoads(id IntersectionID) {
	inter := net.intersections[id]
	if len(inter.roads) < 2 {
		return
	}

	type roadCenter struct {
		id        RoadID
		center    orb.LineString
		sortingPt orb.Point
	}
	centers := make([]roadCenter, 0, len(inter.roads))
	endpoints := make([]orb.Point, 0, len(inter.roads))
	shortest := -1.0
	for _, r := range inter.roads {
		road := net.roads[r]
		center := road.centerTowards(id)
		endpoints = append(endpoints, center[len(center)-1])
		length := lineLength(center)
		if shortest < 0 || length < shortest {
			shortest = length
		}
		centers = append(centers, roadCenter{id: r, center: center})
	}
	intersectionCenter := centerPoint(endpoints)
	for idx := range centers {
		length := lineLength(centers[idx].center)
		centers[idx].sortingPt = pointAtDistance(centers[idx].center, length-shortest)
	}
	sort.SliceStable(centers, func(i, j int) bool {
		ai := normalizeDegrees(angleOfSegment(intersectionCenter, centers[i].sortingPt))
		aj := normalizeDegrees(angleOfSegment(intersectionCenter, centers[j].sortingPt))
		if ai == aj {
			return centers[i].id < centers[j].id
		}
		// Descending angle in y-up coordinates walks clockwise
		return ai > aj
	})
	for idx, rc := range centers {
		inter.roads[idx] = rc.id
	}
}

// invalidateIntersection clears the intersection's polygon and the trims of
// every connected road. Derived geometry is never auto-updated; mutations
// must call this so stale values can't be read.
func (net *StreetNetwork) invalidateIntersection(id IntersectionID) {
	inter, ok := net.intersections[id]
	if !ok {
		return
	}
	inter.invalidateGeometry()
	for _, r := range inter.roads {
		if road, ok := net.roads[r]; ok {
			road.invalidateGeometry()
		}
	}
}

func (net *StreetNetwork) closestIntersection(pt orb.Point) (IntersectionID, bool) {
	best := IntersectionID(-1)
	bestDist := -1.0
	for _, id := range net.intersectionIDsSorted() {
		d := planar.Distance(net.intersections[id].point, pt)
		if bestDist < 0 || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best, best >= 0
}

// CheckInvariants verifies bidirectional adjacency: every road's endpoints
// exist and list the road back; every listed road exists and touches the
// intersection.
func (net *StreetNetwork) CheckInvariants() error {
	for id, road := range net.roads {
		for _, i := range road.endpoints() {
			inter, ok := net.intersections[i]
			if !ok {
				return errors.Wrapf(ErrTopology, "road %d references missing intersection %d", id, i)
			}
			found := false
			for _, r := range inter.roads {
				if r == id {
					found = true
					break
				}
			}
			if !found {
				return errors.Wrapf(ErrTopology, "intersection %d does not list road %d back", i, id)
			}
		}
		if road.sourceIntersectionID == road.targetIntersectionID {
			return errors.Wrapf(ErrTopology, "road %d is a loop", id)
		}
	}
	for id, inter := range net.intersections {
		seen := make(map[RoadID]struct{}, len(inter.roads))
		for _, r := range inter.roads {
			if _, dup := seen[r]; dup {
				return errors.Wrapf(ErrTopology, "intersection %d lists road %d twice", id, r)
			}
			seen[r] = struct{}{}
			road, ok := net.roads[r]
			if !ok {
				return errors.Wrapf(ErrTopology, "intersection %d references missing road %d", id, r)
			}
			if !road.touches(id) {
				return errors.Wrapf(ErrTopology, "road %d does not touch intersection %d", r, id)
			}
		}
	}
	return nil
}
