package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// collapseAllShortRoads removes every road marked as an internal junction
// piece, merging its endpoints. Runs to a fixed point since collapsing one
// road can turn another into a loop.
func (net *StreetNetwork) collapseAllShortRoads() {
	for {
		collapsed := 0
		for _, id := range net.roadIDsSorted() {
			road, ok := net.roads[id]
			if !ok || !road.internalJunctionRoad {
				continue
			}
			if _, _, err := net.collapseShortRoad(id); err != nil {
				log.Warnw("can't collapse short road", "road", id, "error", err)
				road.internalJunctionRoad = false
				continue
			}
			collapsed++
		}
		if collapsed == 0 {
			return
		}
	}
}

// collapseShortRoad merges the road's two endpoints into one intersection.
// The source end survives. Returns the surviving and destroyed intersections,
// equal when the road had already become a loop.
func (net *StreetNetwork) collapseShortRoad(shortR RoadID) (IntersectionID, IntersectionID, error) {
	road, err := net.Road(shortR)
	if err != nil {
		return 0, 0, err
	}
	keepI := road.sourceIntersectionID
	destroyI := road.targetIntersectionID

	if net.intersections[keepI].mapEdge || net.intersections[destroyI].mapEdge ||
		net.intersections[keepI].kind == KIND_MAP_EDGE || net.intersections[destroyI].kind == KIND_MAP_EDGE {
		return 0, 0, errors.Wrapf(ErrTopology, "road %d touches a map edge", shortR)
	}

	// A previous collapse nearby can leave this road as a loop; removing it
	// is the whole job then
	if keepI == destroyI {
		if _, err := net.RemoveRoad(shortR); err != nil {
			return 0, 0, err
		}
		return keepI, keepI, nil
	}

	connectedToKeep := withoutRoad(net.intersections[keepI].roads, shortR)
	connectedToDestroy := withoutRoad(net.intersections[destroyI].roads, shortR)

	// Record where every surviving road will end after the junction becomes
	// one intersection; the geometry algorithm replays these cuts
	trimForMerging := make(map[mergeTrimKey]orb.Point)
	for _, i := range []IntersectionID{keepI, destroyI} {
		for _, r := range net.intersections[i].roads {
			if r == shortR {
				continue
			}
			other := net.roads[r]
			if other.internalJunctionRoad {
				continue
			}
			estimated, ok := net.estimateTrimmedGeometry(r)
			if !ok {
				continue
			}
			if other.sourceIntersectionID == i {
				trimForMerging[mergeTrimKey{road: r, sourceEnd: true}] = estimated[0]
			} else {
				trimForMerging[mergeTrimKey{road: r, sourceEnd: false}] = estimated[len(estimated)-1]
			}
		}
	}
	keep := net.intersections[keepI]
	for key, pt := range trimForMerging {
		keep.trimRoadsForMerging[key] = pt
	}

	if _, err := net.RemoveRoad(shortR); err != nil {
		return 0, 0, err
	}
	destroy := net.intersections[destroyI]
	delete(net.intersections, destroyI)

	// Signals survive the merge
	if destroy.control == CONTROL_SIGNAL {
		keep.control = CONTROL_SIGNAL
	}
	keep.osmNodeIDs = append(keep.osmNodeIDs, destroy.osmNodeIDs...)

	// Re-point every road that ended at the destroyed intersection
	for _, r := range destroy.roads {
		keep.roads = append(keep.roads, r)
		moved := net.roads[r]
		if moved.sourceIntersectionID == destroyI {
			moved.sourceIntersectionID = keepI
		} else {
			moved.targetIntersectionID = keepI
		}
	}
	keep.kind = KIND_UNCLASSIFIED
	net.sortRoads(keepI)
	net.invalidateIntersection(keepI)

	// A banned turn onto the deleted road expands to bans onto each of its
	// former successors
	for _, id := range net.roadIDsSorted() {
		other := net.roads[id]
		var fixed []TurnRestriction
		for _, restriction := range other.turnRestrictions {
			if restriction.To != shortR || restriction.Type != RESTRICTION_BAN_TURNS {
				fixed = append(fixed, restriction)
				continue
			}
			successors := connectedToKeep
			if containsRoad(connectedToKeep, id) {
				successors = connectedToDestroy
			}
			for _, successor := range successors {
				fixed = append(fixed, TurnRestriction{Type: RESTRICTION_BAN_TURNS, To: successor})
			}
		}
		other.turnRestrictions = fixed

		// A via-restriction through the deleted road becomes a simple ban
		var keptVias []ViaRestriction
		for _, restriction := range other.viaRestrictions {
			if restriction.Via == shortR {
				other.turnRestrictions = append(other.turnRestrictions, TurnRestriction{
					Type: RESTRICTION_BAN_TURNS,
					To:   restriction.To,
				})
				continue
			}
			keptVias = append(keptVias, restriction)
		}
		other.viaRestrictions = keptVias
	}

	return keepI, destroyI, nil
}

func withoutRoad(roads []RoadID, exclude RoadID) []RoadID {
	out := make([]RoadID, 0, len(roads))
	for _, r := range roads {
		if r != exclude {
			out = append(out, r)
		}
	}
	return out
}

func containsRoad(roads []RoadID, id RoadID) bool {
	for _, r := range roads {
		if r == id {
			return true
		}
	}
	return false
}
