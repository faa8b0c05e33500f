package streetgraph

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// sidepath is one separately mapped cycleway or footway running parallel to a
// main road, attached to it with short connector roads:
//
//	X--X
//	S  M
//	S  M
//	S  X
//	S  M
//	X--X
//
// S is the sidepath, M the main road segments, '-' the connectors.
type sidepath struct {
	road            RoadID
	center          orb.LineString
	mainSrcI        IntersectionID
	mainDstI        IntersectionID
	mainRoads       []RoadID
	connectorSrc    RoadID
	connectorDst    RoadID
	hasConnectorSrc bool
	hasConnectorDst bool
}

// zipSidepaths folds separately mapped parallel sidepaths into their main
// road as extra lanes with a buffer, then collapses the connectors.
func (net *StreetNetwork) zipSidepaths() {
	var found []*sidepath
	for _, r := range net.roadIDsSorted() {
		road := net.roads[r]
		if !road.isCycleway() && !road.isFootway() {
			continue
		}
		if sp, ok := net.newSidepath(r); ok {
			found = append(found, sp)
		}
	}
	for _, sp := range found {
		sp.zip(net)
	}
}

func (net *StreetNetwork) newSidepath(start RoadID) (*sidepath, bool) {
	road := net.roads[start]

	// At each end there should be exactly one short connector over to the
	// main road, or the end already touches the main road directly.
	type endpoint struct {
		mainI        IntersectionID
		connector    RoadID
		hasConnector bool
	}
	var ends []endpoint
	for _, i := range road.endpoints() {
		var candidates []RoadID
		for _, r := range net.intersections[i].roads {
			if r == start {
				continue
			}
			if net.roads[r].untrimmedLength() < net.limits.sidepathConnectorMeters {
				candidates = append(candidates, r)
			}
		}
		switch len(candidates) {
		case 1:
			connector := candidates[0]
			ends = append(ends, endpoint{
				mainI:        net.roads[connector].otherSide(i),
				connector:    connector,
				hasConnector: true,
			})
		case 0:
			// This end may already be merged into the main road
			ends = append(ends, endpoint{mainI: i})
		}
	}
	if len(ends) != 2 || ends[0].mainI == ends[1].mainI {
		return nil, false
	}

	// The main road may be several segments; pathfind between the two
	// endpoints along driveable roads, in either direction.
	path, ok := net.simplePath(ends[0].mainI, ends[1].mainI)
	if !ok {
		path, ok = net.simplePath(ends[1].mainI, ends[0].mainI)
	}
	if !ok {
		return nil, false
	}
	return &sidepath{
		road:            start,
		center:          road.geomEuclidean,
		mainSrcI:        ends[0].mainI,
		mainDstI:        ends[1].mainI,
		mainRoads:       path,
		connectorSrc:    ends[0].connector,
		hasConnectorSrc: ends[0].hasConnector,
		connectorDst:    ends[1].connector,
		hasConnectorDst: ends[1].hasConnector,
	}, true
}

// simplePath finds a shortest driveable road sequence from one intersection
// to another, honoring one-way directions.
func (net *StreetNetwork) simplePath(from, to IntersectionID) ([]RoadID, bool) {
	type arrival struct {
		via  RoadID
		prev IntersectionID
	}
	visited := map[IntersectionID]arrival{from: {}}
	queue := []IntersectionID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			var path []RoadID
			for i := current; i != from; i = visited[i].prev {
				path = append([]RoadID{visited[i].via}, path...)
			}
			return path, true
		}
		for _, r := range net.intersections[current].roads {
			road := net.roads[r]
			if !road.isDriveable() {
				continue
			}
			if dir, oneway := onewayForDriving(road.lanes); oneway {
				outbound := road.sourceIntersectionID == current
				if outbound != (dir == LANE_FORWARD) {
					continue
				}
			}
			next := road.otherSide(current)
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = arrival{via: r, prev: current}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func (sp *sidepath) zip(net *StreetNetwork) {
	// An earlier zip in the same batch may have consumed one of the pieces
	if _, ok := net.roads[sp.road]; !ok {
		return
	}
	removed, err := net.RemoveRoad(sp.road)
	if err != nil {
		return
	}
	sidepathLanes := append([]Lane{}, removed.lanes...)

	// Inferred shoulders around the path don't survive the merge
	if len(sidepathLanes) > 0 && sidepathLanes[0].Type == LANE_SHOULDER {
		sidepathLanes = sidepathLanes[1:]
	}
	if len(sidepathLanes) > 0 && sidepathLanes[len(sidepathLanes)-1].Type == LANE_SHOULDER {
		sidepathLanes = sidepathLanes[:len(sidepathLanes)-1]
	}
	if len(sidepathLanes) == 0 {
		return
	}

	touched := make(map[IntersectionID]struct{})
	for _, r := range sp.mainRoads {
		main, ok := net.roads[r]
		if !ok {
			continue
		}
		left, right, ok := main.untrimmedSides()
		if !ok {
			continue
		}
		// Which side of the main road is the sidepath on? Compare middles.
		middle := pointAtDistance(sp.center, lineLength(sp.center)/2)
		snapToLeft := planar.Distance(middle, pointAtDistance(left, lineLength(left)/2)) <
			planar.Distance(middle, pointAtDistance(right, lineLength(right)/2))

		// Does the sidepath point the same way as the main road? 90 degrees
		// is a generous definition of parallel, but the decision is binary.
		sameWay := math.Abs(angleBetweenLines(sp.center, main.geomEuclidean)) < math.Pi/2

		insertIdx := len(main.lanes)
		if snapToLeft {
			insertIdx = 0
			if len(main.lanes) > 0 && main.lanes[0].isWalkable() {
				insertIdx = 1
			}
		} else if len(main.lanes) > 0 && main.lanes[len(main.lanes)-1].isWalkable() {
			insertIdx = len(main.lanes) - 1
		}

		insert := make([]Lane, 0, len(sidepathLanes)+1)
		for _, lane := range sidepathLanes {
			if !sameWay {
				lane.Direction = lane.Direction.Opposite()
			}
			insert = append(insert, lane)
		}
		// The separate mapping meant physical separation; keep it as a buffer
		buffer := newBufferLane(BUFFER_PLANTERS, insert[0].Direction)
		if snapToLeft {
			buffer.Direction = insert[len(insert)-1].Direction
			insert = append(insert, buffer)
		} else {
			insert = append([]Lane{buffer}, insert...)
		}

		newLanes := make([]Lane, 0, len(main.lanes)+len(insert))
		newLanes = append(newLanes, main.lanes[:insertIdx]...)
		newLanes = append(newLanes, insert...)
		newLanes = append(newLanes, main.lanes[insertIdx:]...)
		main.lanes = newLanes

		for _, i := range main.endpoints() {
			touched[i] = struct{}{}
		}
	}
	for i := range touched {
		net.invalidateIntersection(i)
	}

	// Collapse the connectors right away instead of waiting for the
	// degenerate-intersection pass
	if sp.hasConnectorSrc {
		if _, ok := net.roads[sp.connectorSrc]; ok {
			net.collapseShortRoad(sp.connectorSrc)
		}
	}
	if sp.hasConnectorDst {
		if _, ok := net.roads[sp.connectorDst]; ok {
			net.collapseShortRoad(sp.connectorDst)
		}
	}
}
