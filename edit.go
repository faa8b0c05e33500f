package streetgraph

import (
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

/* Targeted editing operations. Unlike the batch transformations, these keep
derived geometry fresh: affected intersections are recomputed before the call
returns. */

// OverwriteOSMTagsForWay replaces the tags of every road that came from the
// given way and re-derives their lanes. Geometry around the affected roads is
// recomputed since lane widths may have changed.
func (net *StreetNetwork) OverwriteOSMTagsForWay(wayID osm.WayID, tags osm.Tags) error {
	var affected []IntersectionID
	found := false
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		owns := false
		for _, w := range road.osmWayIDs {
			if w == wayID {
				owns = true
				break
			}
		}
		if !owns {
			continue
		}
		found = true
		cloned := make(osm.Tags, len(tags))
		copy(cloned, tags)
		road.tags = cloned
		road.name = tags.Find("name")
		road.highway = tags.Find("highway")
		road.layer = parseLayer(tags)
		road.lanes = lanesFromTags(tags, net.options)
		road.invalidateGeometry()
		affected = append(affected, road.sourceIntersectionID, road.targetIntersectionID)
	}
	if !found {
		return errors.Wrapf(ErrWayNotTracked, "way %d", wayID)
	}
	for _, i := range affected {
		net.sortRoads(i)
		net.invalidateIntersection(i)
	}
	net.regenerateGeometry(affected...)
	return nil
}

// CollapseShortRoad removes the road and merges its endpoints, then
// recomputes geometry around the survivor. Collapsing a road that's already
// gone is not an error, so the operation can be retried safely.
func (net *StreetNetwork) CollapseShortRoad(id RoadID) error {
	if _, ok := net.roads[id]; !ok {
		return nil
	}
	keepI, _, err := net.collapseShortRoad(id)
	if err != nil {
		return err
	}
	net.regenerateGeometry(keepI)
	return nil
}

// CollapseIntersection removes a two-road intersection, joining its roads,
// and recomputes geometry at the joined road's remaining endpoints.
func (net *StreetNetwork) CollapseIntersection(id IntersectionID) error {
	inter, ok := net.intersections[id]
	if !ok {
		return nil
	}
	affected := make([]IntersectionID, 0, 2)
	for _, r := range inter.roads {
		affected = append(affected, net.roads[r].otherSide(id))
	}
	if err := net.collapseIntersection(id); err != nil {
		return err
	}
	net.regenerateGeometry(affected...)
	return nil
}

// ZipSidepath folds the given separately mapped sidepath into its parallel
// main road, then recomputes geometry along the thickened roads. Roads that
// no longer exist or no longer match the sidepath pattern are skipped.
func (net *StreetNetwork) ZipSidepath(id RoadID) error {
	road, ok := net.roads[id]
	if !ok {
		return nil
	}
	if !road.isSidepath() {
		return errors.Wrapf(ErrTopology, "road %d is not a sidepath", id)
	}
	sp, ok := net.newSidepath(id)
	if !ok {
		return errors.Wrapf(ErrTopology, "road %d doesn't match the parallel sidepath pattern", id)
	}
	affected := make([]IntersectionID, 0, 2*len(sp.mainRoads))
	for _, r := range sp.mainRoads {
		if main, ok := net.roads[r]; ok {
			affected = append(affected, main.sourceIntersectionID, main.targetIntersectionID)
		}
	}
	sp.zip(net)
	kept := affected[:0]
	for _, i := range affected {
		if _, ok := net.intersections[i]; ok {
			kept = append(kept, i)
		}
	}
	net.regenerateGeometry(kept...)
	return nil
}
