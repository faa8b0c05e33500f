package streetgraph

import (
	"github.com/paulmach/orb/planar"
)

type conflictType uint16

const (
	CONFLICT_UNCONTESTED = conflictType(iota)
	CONFLICT_DIVERGE
	CONFLICT_MERGE
	CONFLICT_CROSS
)

func (iotaIdx conflictType) String() string {
	return [...]string{"uncontested", "diverge", "merge", "cross"}[iotaIdx]
}

// ClassifyIntersections recomputes the kind of every unclassified
// intersection from its connected-road set. Kinds reset to unclassified on
// every adjacency change, so calling this after each transformation keeps
// them trustworthy.
func (net *StreetNetwork) ClassifyIntersections() {
	for _, id := range net.intersectionIDsSorted() {
		inter := net.intersections[id]
		if inter.kind != KIND_UNCLASSIFIED {
			continue
		}
		inter.kind = net.guessKind(id)
	}
}

func (net *StreetNetwork) guessKind(id IntersectionID) IntersectionKind {
	inter := net.intersections[id]
	roadIDs := inter.roads

	if len(roadIDs) == 0 {
		return KIND_TERMINUS
	}
	if len(roadIDs) == 1 {
		if inter.mapEdge || net.onBoundary(inter) {
			return KIND_MAP_EDGE
		}
		return KIND_TERMINUS
	}
	if len(roadIDs) == 2 {
		return KIND_CONNECTION
	}

	// All movements through the intersection, as (source, destination) pairs
	// of positions in the clockwise ordering. U-turns are left out.
	type movement struct {
		src, dst int
	}
	var movements []movement
	for s := 0; s < len(roadIDs); s++ {
		for d := 0; d < len(roadIDs); d++ {
			if s == d {
				continue
			}
			src := net.roads[roadIDs[s]]
			if turnIsAllowed(src, roadIDs[d]) {
				movements = append(movements, movement{s, d})
			}
		}
	}

	worst := CONFLICT_UNCONTESTED
	for i := 0; i < len(movements); i++ {
		for j := i + 1; j < len(movements); j++ {
			conflict := calcConflict(
				movements[i].src, movements[i].dst,
				movements[j].src, movements[j].dst,
			)
			if conflict > worst {
				worst = conflict
			}
		}
	}
	if worst == CONFLICT_CROSS {
		return KIND_INTERSECTION
	}
	return KIND_FORK
}

// onBoundary reports whether the intersection sits on the clip boundary
func (net *StreetNetwork) onBoundary(inter *Intersection) bool {
	if len(net.boundary) == 0 {
		return false
	}
	for i := 1; i < len(net.boundary); i++ {
		closest := closestPointOnSegment(net.boundary[i-1], net.boundary[i], inter.point)
		if planar.Distance(closest, inter.point) <= dedupeEpsilon {
			return true
		}
	}
	return false
}

// turnIsAllowed honors the road's simple turn restrictions: explicit bans
// forbid, and any exclusive allow forbids everything it doesn't name.
func turnIsAllowed(src *Road, dst RoadID) bool {
	hasExclusiveAllows := false
	for _, restriction := range src.turnRestrictions {
		switch restriction.Type {
		case RESTRICTION_BAN_TURNS:
			if restriction.To == dst {
				return false
			}
		case RESTRICTION_ONLY_ALLOW_TURNS:
			if restriction.To == dst {
				return true
			}
			hasExclusiveAllows = true
		}
	}
	return !hasExclusiveAllows
}

// calcConflict compares two movements by their positions around the
// intersection. Two arcs over the clockwise ordering cross exactly when one
// endpoint of the second lies between the first's endpoints and the other
// doesn't.
func calcConflict(aSrc, aDst, bSrc, bDst int) conflictType {
	if aSrc == bSrc {
		return CONFLICT_DIVERGE
	}
	if aDst == bDst {
		return CONFLICT_MERGE
	}
	if isBetween(aSrc, bSrc, bDst) != isBetween(aDst, bSrc, bDst) {
		return CONFLICT_CROSS
	}
	return CONFLICT_UNCONTESTED
}

func isBetween(num, rangeA, rangeB int) bool {
	bot, top := rangeA, rangeB
	if bot > top {
		bot, top = top, bot
	}
	return bot < num && num < top
}
