package streetgraph

import (
	"github.com/paulmach/orb"
)

// estimateTrimmedGeometry predicts what a road's center line will look like
// after geometry generation, without touching any stored state. Used to judge
// length before the trims are actually computed.
func (net *StreetNetwork) estimateTrimmedGeometry(id RoadID) (orb.LineString, bool) {
	road, ok := net.roads[id]
	if !ok {
		return nil, false
	}
	empty := map[mergeTrimKey]orb.Point{}
	resultSrc := intersectionPolygon(road.sourceIntersectionID,
		net.snapshotInputs(road.sourceIntersectionID), empty, net.limits.degenerateHalfLength)
	if resultSrc.err != nil {
		return nil, false
	}
	resultDst := intersectionPolygon(road.targetIntersectionID,
		net.snapshotInputs(road.targetIntersectionID), empty, net.limits.degenerateHalfLength)
	if resultDst.err != nil {
		return nil, false
	}
	trimStart := resultSrc.trims[id]
	trimEnd := resultDst.trims[id]
	return exactSlice(road.geomEuclidean, trimStart, road.untrimmedLength()-trimEnd)
}

// findShortRoads marks roads that are really just internal pieces of one big
// junction. Marked roads get collapsed by the next pass. Sources: explicit
// OSM tagging, roads around clustered traffic signals, and dog-legs.
func (net *StreetNetwork) findShortRoads() []RoadID {
	var found []RoadID
	for _, id := range net.roadIDsSorted() {
		if net.roads[id].internalJunctionRoad {
			found = append(found, id)
		}
	}
	found = append(found, net.findTrafficSignalClusters()...)
	found = append(found, net.findDogLegs()...)
	for _, id := range found {
		net.roads[id].internalJunctionRoad = true
	}
	return found
}

// findTrafficSignalClusters looks for short roads connected to traffic
// signals. Signalled junctions mapped as several nodes produce these.
func (net *StreetNetwork) findTrafficSignalClusters() []RoadID {
	var results []RoadID
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		if road.internalJunctionRoad {
			continue
		}
		srcI := net.intersections[road.sourceIntersectionID]
		dstI := net.intersections[road.targetIntersectionID]
		if srcI.mapEdge || dstI.mapEdge {
			continue
		}
		if srcI.control != CONTROL_SIGNAL && dstI.control != CONTROL_SIGNAL {
			continue
		}
		if road.untrimmedLength() <= net.limits.signalClusterMeters {
			results = append(results, id)
		}
	}
	return results
}

// findDogLegs detects the short jog in the middle of what's really a four-way
// intersection:
//
//	      |
//	      |
//	---X~~X----
//	   |
//	   |
//
// The ~~ piece between the two X nodes is the dog-leg.
func (net *StreetNetwork) findDogLegs() []RoadID {
	var results []RoadID
ROAD:
	for _, id := range net.roadIDsSorted() {
		estimated, ok := net.estimateTrimmedGeometry(id)
		if !ok || lineLength(estimated) > net.limits.shortRoadMeters {
			continue
		}
		road := net.roads[id]
		for _, i := range road.endpoints() {
			inter := net.intersections[i]
			if len(inter.roads) != 3 {
				continue ROAD
			}
			if inter.kind != KIND_INTERSECTION {
				continue ROAD
			}
			// Sidepaths overlap in broken ways and cause false positives
			for _, r := range inter.roads {
				if !net.roads[r].isDriveable() {
					continue ROAD
				}
			}
		}
		results = append(results, id)
	}
	return results
}
