package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// trimDeadendCycleways removes short cycleway and footway stubs hanging off
// the network. These are mostly crossing fragments left over from clipping or
// from sidepaths mapped up to a driveway.
func (net *StreetNetwork) trimDeadendCycleways() {
	for {
		removed := 0
		for _, r := range net.roadIDsSorted() {
			road := net.roads[r]
			if !road.isSidepath() {
				continue
			}
			if road.untrimmedLength() > net.limits.deadendCyclewayMeters {
				continue
			}
			deadend := false
			for _, i := range road.endpoints() {
				inter := net.intersections[i]
				if len(inter.roads) == 1 && !inter.mapEdge {
					deadend = true
				}
			}
			if !deadend {
				continue
			}
			if _, err := net.RemoveRoad(r); err == nil {
				removed++
			}
		}
		if removed == 0 {
			break
		}
		// Removing a stub can expose the next one
	}
	for _, i := range net.intersectionIDsSorted() {
		if len(net.intersections[i].roads) == 0 {
			net.DeleteIntersection(i)
		}
	}
}

// collapseDegenerateIntersections merges away intersections joining exactly
// two roads that are the same street in every way that matters.
func (net *StreetNetwork) collapseDegenerateIntersections() {
	var merge []IntersectionID
	for _, i := range net.intersectionIDsSorted() {
		inter := net.intersections[i]
		if len(inter.roads) != 2 {
			continue
		}
		road1 := net.roads[inter.roads[0]]
		road2 := net.roads[inter.roads[1]]
		if err := shouldCollapse(road1, road2); err != nil {
			log.Debugw("not collapsing degenerate intersection", "intersection", i, "reason", err)
			continue
		}
		merge = append(merge, i)
	}
	for _, i := range merge {
		if err := net.collapseIntersection(i); err != nil {
			log.Warnw("degenerate collapse failed", "intersection", i, "error", err)
		}
	}
}

func shouldCollapse(road1, road2 *Road) error {
	if len(road1.turnRestrictions) > 0 || len(road1.viaRestrictions) > 0 ||
		len(road2.turnRestrictions) > 0 || len(road2.viaRestrictions) > 0 {
		return errors.New("one road has turn restrictions")
	}
	// Two one-ways pointing at each other are a blackhole, not a street
	_, oneway1 := onewayForDriving(road1.lanes)
	_, oneway2 := onewayForDriving(road2.lanes)
	if oneway1 && oneway2 && road1.targetIntersectionID == road2.targetIntersectionID {
		return errors.New("oneway roads point at each other")
	}
	if !lanesEqual(road1.lanes, road2.lanes) {
		return errors.New("lane specs don't match")
	}
	if road1.name != road2.name {
		return errors.New("names don't match")
	}
	if road1.highway != road2.highway {
		return errors.New("highway types don't match")
	}
	if road1.layer != road2.layer {
		return errors.New("layers don't match")
	}
	if !tagsMatchIgnoringUnimportant(road1.tags, road2.tags) {
		return errors.New("tags don't match")
	}
	return nil
}

// tagsMatchIgnoringUnimportant compares the tag maps, skipping tags that
// shouldn't block a merge (surface, lit and similar cosmetics).
func tagsMatchIgnoringUnimportant(a, b osm.Tags) bool {
	filter := func(tags osm.Tags) map[string]string {
		out := make(map[string]string, len(tags))
		for _, tag := range tags {
			if _, skip := unimportantTags[tag.Key]; skip {
				continue
			}
			out[tag.Key] = tag.Value
		}
		return out
	}
	fa, fb := filter(a), filter(b)
	if len(fa) != len(fb) {
		return false
	}
	for k, v := range fa {
		if fb[k] != v {
			return false
		}
	}
	return true
}

// collapseIntersection deletes an intersection with exactly two roads and
// joins them into one. The first road (in clockwise order) survives with its
// original direction; the other's identity folds into it.
func (net *StreetNetwork) collapseIntersection(i IntersectionID) error {
	inter, err := net.Intersection(i)
	if err != nil {
		return err
	}
	if len(inter.roads) != 2 {
		return errors.Wrapf(ErrTopology, "intersection %d has %d roads, need exactly 2", i, len(inter.roads))
	}
	keepR := inter.roads[0]
	destroyR := inter.roads[1]

	// Loops break the 4-way concatenation; count distinct endpoints to detect
	endpoints := make(map[IntersectionID]struct{})
	for _, e := range net.roads[keepR].endpoints() {
		endpoints[e] = struct{}{}
	}
	for _, e := range net.roads[destroyR].endpoints() {
		endpoints[e] = struct{}{}
	}
	if len(endpoints) != 3 {
		return errors.Wrapf(ErrTopology, "intersection %d joins a loop", i)
	}

	keepRoad, err := net.RemoveRoad(keepR)
	if err != nil {
		return err
	}
	destroyRoad, err := net.RemoveRoad(destroyR)
	if err != nil {
		return err
	}
	if err := net.DeleteIntersection(i); err != nil {
		return err
	}

	keepRoad.osmWayIDs = append(keepRoad.osmWayIDs, destroyRoad.osmWayIDs...)

	// 4 concatenation cases, preserving keepRoad's direction
	var newPts orb.LineString
	var newSrc, newDst IntersectionID
	switch {
	case keepRoad.targetIntersectionID == destroyRoad.sourceIntersectionID:
		newPts = append(newPts, keepRoad.geomEuclidean...)
		newPts = append(newPts, destroyRoad.geomEuclidean...)
		newSrc, newDst = keepRoad.sourceIntersectionID, destroyRoad.targetIntersectionID
	case keepRoad.targetIntersectionID == destroyRoad.targetIntersectionID:
		newPts = append(newPts, keepRoad.geomEuclidean...)
		newPts = append(newPts, reverseLine(destroyRoad.geomEuclidean)...)
		newSrc, newDst = keepRoad.sourceIntersectionID, destroyRoad.sourceIntersectionID
	case keepRoad.sourceIntersectionID == destroyRoad.sourceIntersectionID:
		newPts = append(newPts, reverseLine(destroyRoad.geomEuclidean)...)
		newPts = append(newPts, keepRoad.geomEuclidean...)
		newSrc, newDst = destroyRoad.targetIntersectionID, keepRoad.targetIntersectionID
	case keepRoad.sourceIntersectionID == destroyRoad.targetIntersectionID:
		newPts = append(newPts, destroyRoad.geomEuclidean...)
		newPts = append(newPts, keepRoad.geomEuclidean...)
		newSrc, newDst = destroyRoad.sourceIntersectionID, keepRoad.targetIntersectionID
	default:
		return errors.Wrapf(ErrTopology, "roads %d and %d don't share intersection %d", keepR, destroyR, i)
	}

	// Simplify curves and dedupe the doubled joint point. The epsilon was
	// tuned against curvy merged service roads.
	keepRoad.sourceIntersectionID = newSrc
	keepRoad.targetIntersectionID = newDst
	keepRoad.geomEuclidean = simplifyLine(approxDedupeLine(newPts), 1.0)
	keepRoad.geom = lineToWGS84(keepRoad.geomEuclidean)

	net.roads[keepRoad.ID] = keepRoad
	net.attachRoad(keepRoad)

	// destroyR becomes keepR in everyone's restrictions
	for _, road := range net.roads {
		for idx := range road.turnRestrictions {
			if road.turnRestrictions[idx].To == destroyR {
				road.turnRestrictions[idx].To = keepR
			}
		}
		for idx := range road.viaRestrictions {
			if road.viaRestrictions[idx].Via == destroyR {
				road.viaRestrictions[idx].Via = keepR
			}
			if road.viaRestrictions[idx].To == destroyR {
				road.viaRestrictions[idx].To = keepR
			}
		}
	}
	return nil
}

func approxDedupeLine(line orb.LineString) orb.LineString {
	return orb.LineString(approxDedupe([]orb.Point(line), distEpsilon))
}
