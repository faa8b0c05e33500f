package streetgraph

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// snapCycleways is a stricter, cycleway-only variant of zipSidepaths: the
// separate cycleway must additionally run close to the main road. Gated
// behind Options.SnapCycleways.
func (net *StreetNetwork) snapCycleways() {
	var found []*sidepath
	for _, r := range net.roadIDsSorted() {
		road := net.roads[r]
		if !road.isCycleway() {
			continue
		}
		sp, ok := net.newSidepath(r)
		if !ok {
			continue
		}
		if !net.closeEnoughToMainRoad(sp) {
			continue
		}
		found = append(found, sp)
	}
	for _, sp := range found {
		sp.zip(net)
	}
}

func (net *StreetNetwork) closeEnoughToMainRoad(sp *sidepath) bool {
	middle := pointAtDistance(sp.center, lineLength(sp.center)/2)
	for _, r := range sp.mainRoads {
		main, ok := net.roads[r]
		if !ok {
			continue
		}
		if distToLine(main.geomEuclidean, middle) <= net.limits.cyclewaySnapMeters {
			return true
		}
	}
	return false
}

func distToLine(line orb.LineString, pt orb.Point) float64 {
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		closest := closestPointOnSegment(line[i-1], line[i], pt)
		if d := planar.Distance(closest, pt); d < best {
			best = d
		}
	}
	return best
}

// mergeDualCarriageways detects places where a named road splits into two
// one-way halves and rejoins. Detection only for now: candidates are recorded
// as debug steps so they can be inspected, the actual merge isn't implemented
// yet.
// TODO merge the traced sides into one road with a median buffer
func (net *StreetNetwork) mergeDualCarriageways() {
	for _, i := range net.intersectionIDsSorted() {
		inter := net.intersections[i]
		if len(inter.roads) < 3 {
			continue
		}
		byName := make(map[string][]RoadID)
		for _, r := range inter.roads {
			road := net.roads[r]
			if road.name == "" {
				continue
			}
			byName[road.name] = append(byName[road.name], r)
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			group := byName[name]
			if len(group) != 3 {
				continue
			}
			var oneways, bidis []RoadID
			for _, r := range group {
				if _, oneway := onewayForDriving(net.roads[r].lanes); oneway {
					oneways = append(oneways, r)
				} else {
					bidis = append(bidis, r)
				}
			}
			if len(oneways) != 2 || len(bidis) != 1 {
				continue
			}
			log.Infow("dual carriageway split/join candidate",
				"intersection", i, "name", name, "side1", oneways[0], "side2", oneways[1])
			if net.options.DebugEachStep {
				net.snapshotDebugStep("dual_carriageway_candidate")
			}
		}
	}
}
