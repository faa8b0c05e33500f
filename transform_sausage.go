package streetgraph

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// collapseSausageLinks finds dual carriageways that split very briefly and
// re-join with nothing in between, and collapses each pair into one road with
// a curb buffer down the middle.
func (net *StreetNetwork) collapseSausageLinks() {
	for _, pair := range net.findSausageLinks() {
		net.fixSausageLink(pair[0], pair[1])
	}
}

func (net *StreetNetwork) findSausageLinks() [][2]RoadID {
	seen := make(map[[2]RoadID]struct{})
	var pairs [][2]RoadID
	for _, id1 := range net.roadIDsSorted() {
		road1 := net.roads[id1]
		if _, oneway := onewayForDriving(road1.lanes); !oneway {
			continue
		}
		if road1.untrimmedLength() > net.limits.sausageLinkMeters {
			continue
		}

		// Roads sharing both endpoints with road1
		var common []RoadID
		for _, r := range net.intersections[road1.sourceIntersectionID].roads {
			if r == id1 {
				continue
			}
			other := net.roads[r]
			if other.touches(road1.targetIntersectionID) {
				common = append(common, r)
			}
		}
		// Several parallel roads between the same two intersections means
		// something weird is mapped there; leave it alone
		if len(common) != 1 {
			continue
		}
		id2 := common[0]
		if _, done := seen[[2]RoadID{id2, id1}]; done {
			continue
		}

		road2 := net.roads[id2]
		if _, oneway := onewayForDriving(road2.lanes); !oneway {
			continue
		}
		if road1.name != road2.name {
			continue
		}
		// The two one-ways must form a loop; otherwise they're just parallel
		if !(road1.targetIntersectionID == road2.sourceIntersectionID &&
			road2.targetIntersectionID == road1.sourceIntersectionID) {
			continue
		}
		// Both intersections must connect to something else, or the pair is a
		// free-standing loop that would collapse to nothing
		if len(net.intersections[road1.sourceIntersectionID].roads) < 3 ||
			len(net.intersections[road1.targetIntersectionID].roads) < 3 {
			continue
		}
		// Roundabouts split from one OSM way stay as they are
		if len(road1.osmWayIDs) > 0 && sameWayIDs(road1.osmWayIDs, road2.osmWayIDs) {
			continue
		}
		seen[[2]RoadID{id1, id2}] = struct{}{}
		pairs = append(pairs, [2]RoadID{id1, id2})
	}
	return pairs
}

func sameWayIDs(a, b []osm.WayID) bool {
	if len(a) != len(b) {
		return false
	}
	sortedA := append([]osm.WayID{}, a...)
	sortedB := append([]osm.WayID{}, b...)
	sort.Slice(sortedA, func(i, j int) bool { return sortedA[i] < sortedA[j] })
	sort.Slice(sortedB, func(i, j int) bool { return sortedB[i] < sortedB[j] })
	for i := range sortedA {
		if sortedA[i] != sortedB[i] {
			return false
		}
	}
	return true
}

func (net *StreetNetwork) fixSausageLink(id1, id2 RoadID) {
	road2, err := net.RemoveRoad(id2)
	if err != nil {
		return
	}
	road1 := net.roads[id1]

	road1.osmWayIDs = append(road1.osmWayIDs, road2.osmWayIDs...)

	// The two pieces bend away from the median; a straight line between the
	// intersections is closer to the real center
	road1.geomEuclidean = orb.LineString{
		road1.geomEuclidean[0],
		road1.geomEuclidean[len(road1.geomEuclidean)-1],
	}
	road1.geom = lineToWGS84(road1.geomEuclidean)

	lanes1 := road1.lanes
	lanes2 := road2.lanes
	if net.options.DrivingSide == DRIVING_SIDE_RIGHT {
		// No sidewalk in the middle of the merged road
		if len(lanes1) > 0 && lanes1[0].Type == LANE_SIDEWALK {
			lanes1 = lanes1[1:]
		}
		if len(lanes2) > 0 && lanes2[0].Type == LANE_SIDEWALK {
			lanes2 = lanes2[1:]
		}
		merged := []Lane{}
		for i := len(lanes2) - 1; i >= 0; i-- {
			lane := lanes2[i]
			lane.Direction = lane.Direction.Opposite()
			merged = append(merged, lane)
		}
		merged = append(merged, newBufferLane(BUFFER_CURB, LANE_FORWARD))
		merged = append(merged, lanes1...)
		road1.lanes = merged
	} else {
		if len(lanes1) > 0 && lanes1[len(lanes1)-1].Type == LANE_SIDEWALK {
			lanes1 = lanes1[:len(lanes1)-1]
		}
		reversed := make([]Lane, 0, len(lanes2))
		for i := len(lanes2) - 1; i >= 0; i-- {
			reversed = append(reversed, lanes2[i])
		}
		if len(reversed) > 0 && reversed[0].Type == LANE_SIDEWALK {
			reversed = reversed[1:]
		}
		merged := append([]Lane{}, lanes1...)
		merged = append(merged, newBufferLane(BUFFER_CURB, LANE_FORWARD))
		for _, lane := range reversed {
			lane.Direction = lane.Direction.Opposite()
			merged = append(merged, lane)
		}
		road1.lanes = merged
	}

	for _, i := range road1.endpoints() {
		net.sortRoads(i)
		net.invalidateIntersection(i)
	}
}
