package streetgraph

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// inputRoad is an immutable snapshot of one road handed to the intersection
// geometry algorithm. Snapshots keep per-intersection computations independent
// so they can run in parallel.
type inputRoad struct {
	id        RoadID
	sourceI   IntersectionID
	targetI   IntersectionID
	center    orb.LineString // untrimmed, oriented source -> target
	halfWidth float64
	highway   string
}

// geometryResult carries everything one intersection's computation produced:
// the polygon, per-road trim distances at this intersection's end, and
// degeneracy counters for diagnostics.
type geometryResult struct {
	intersection IntersectionID
	polygon      orb.Ring
	trims        map[RoadID]float64
	clampedTrims int
	bowtie       bool
	err          error
}

// roadLine pairs a road with both of its full-width boundary lines, oriented
// to end at the intersection being processed.
type roadLine struct {
	id     RoadID
	center orb.LineString // toward the intersection
	fwdPl  orb.LineString // right side
	backPl orb.LineString // left side
}

// intersectionPolygon computes the polygon of one intersection and the trim
// distance of every connected road at this end. Roads must already be in
// clockwise order. The computation is deterministic and idempotent: it reads
// only untrimmed geometry.
func intersectionPolygon(id IntersectionID, roads []inputRoad, trimForMerging map[mergeTrimKey]orb.Point, degenerateHalfLength float64) geometryResult {
	result := geometryResult{
		intersection: id,
		trims:        make(map[RoadID]float64, len(roads)),
	}
	if len(roads) == 0 {
		result.err = errors.Errorf("intersection %d has no roads", id)
		return result
	}

	// Pre-trim roads around a consolidated intersection: both halves of the
	// former short road must end up cut to the same recorded point.
	pretrimmed := false
	originals := make(map[RoadID]float64, len(roads))
	for idx := range roads {
		road := &roads[idx]
		originals[road.id] = lineLength(road.center)
		endpt, ok := trimForMerging[mergeTrimKey{road: road.id, sourceEnd: road.sourceI == id}]
		if !ok {
			continue
		}
		pretrimmed = true
		if road.sourceI == id {
			if sliced, ok := sliceStartingAt(road.center, endpt); ok {
				road.center = sliced
			} else {
				log.Warnw("recorded merge point is past the road start", "road", road.id)
			}
		} else {
			if sliced, ok := sliceEndingAt(road.center, endpt); ok {
				road.center = sliced
			} else {
				log.Warnw("recorded merge point is before the road end", "road", road.id)
			}
		}
	}

	lines := make([]roadLine, 0, len(roads))
	for _, road := range roads {
		center := road.center
		if road.sourceI == id {
			center = reverseLine(center)
		} else if road.targetI != id {
			result.err = errors.Errorf("road %d does not touch intersection %d", road.id, id)
			return result
		}
		fwd, okF := shiftLine(center, road.halfWidth)
		back, okB := shiftLine(center, -road.halfWidth)
		if !okF || !okB {
			result.err = errors.Errorf("can't offset boundary lines of road %d", road.id)
			return result
		}
		lines = append(lines, roadLine{id: road.id, center: center, fwdPl: fwd, backPl: back})
	}

	byID := make(map[RoadID]inputRoad, len(roads))
	for _, road := range roads {
		byID[road.id] = road
	}

	var newCenters map[RoadID]orb.LineString
	switch {
	case len(lines) == 1:
		newCenters = deadendGeometry(&result, lines, degenerateHalfLength)
	case pretrimmed:
		newCenters = pretrimmedGeometry(&result, lines)
	default:
		if centers, ok := onOffRamp(&result, lines, byID, degenerateHalfLength); ok {
			newCenters = centers
		} else {
			newCenters = generalizedTrimBack(&result, lines, byID, degenerateHalfLength)
		}
	}
	if result.err != nil {
		return result
	}

	// Convert the shortened centers (oriented toward the intersection) into
	// trim distances at this end, clamped to the road's own length.
	for r, center := range newCenters {
		trim := originals[r] - lineLength(center)
		if trim < 0 {
			trim = 0
		}
		if trim > originals[r] {
			trim = originals[r]
			result.clampedTrims++
		}
		result.trims[r] = trim
	}
	return result
}

func roadLineFor(lines []roadLine, id RoadID) orb.LineString {
	for _, l := range lines {
		if l.id == id {
			return l.center
		}
	}
	return nil
}

// generalizedTrimBack is the general case: intersect every road's boundary
// lines with every other road's, trim each center back to the farthest
// perpendicular hit, then assemble the polygon from corner hits and trimmed
// side endpoints.
func generalizedTrimBack(result *geometryResult, lines []roadLine, roads map[RoadID]inputRoad, degenerateHalfLength float64) map[RoadID]orb.LineString {
	type sideLine struct {
		id RoadID
		pl orb.LineString
	}
	sides := make([]sideLine, 0, 2*len(lines))
	for _, l := range lines {
		sides = append(sides, sideLine{l.id, l.fwdPl}, sideLine{l.id, l.backPl})
	}

	newCenters := make(map[RoadID]orb.LineString, len(lines))
	for _, s1 := range sides {
		road1 := roads[s1.id]
		roadCenter := roadLineFor(lines, s1.id)

		// Always trim back a minimum amount when there's room
		shortest := roadCenter
		if lineLength(roadCenter) >= degenerateHalfLength+3*distEpsilon {
			if sliced, ok := exactSlice(roadCenter, 0, lineLength(roadCenter)-degenerateHalfLength); ok {
				shortest = sliced
			}
		}

		for _, s2 := range sides {
			if s1.id == s2.id {
				continue
			}
			road2 := roads[s2.id]

			// Two roads between the same pair of intersections tend to hit on
			// the far side; only look at the near halves then.
			sameEndpoints := (road1.sourceI == road2.sourceI && road1.targetI == road2.targetI) ||
				(road1.sourceI == road2.targetI && road1.targetI == road2.sourceI)
			pl1, pl2 := s1.pl, s2.pl
			if sameEndpoints {
				pl1 = secondHalf(pl1)
				pl2 = secondHalf(pl2)
			}

			// Walk from the intersection outward so we find the hit closest
			// to the intersection being processed.
			hit, angle, ok := linesIntersection(reverseLine(pl1), pl2)
			if !ok {
				continue
			}
			// Cut the center at the perpendicular through the hit
			perp := angle + math.Pi/2
			trimTo, ok := lineCrossInfinite(reverseLine(roadCenter), hit, perp)
			if !ok {
				// Near-parallel boundaries at a very obtuse angle: the
				// perpendicular misses the center line entirely. Clamp
				// instead of producing a corrupted polygon.
				result.clampedTrims++
				continue
			}
			if trimmed, ok := sliceEndingAt(roadCenter, trimTo); ok {
				if lineLength(trimmed) < lineLength(shortest) {
					shortest = trimmed
				}
			}
		}

		// Never lengthen something from a previous pass
		if existing, ok := newCenters[s1.id]; !ok || lineLength(shortest) < lineLength(existing) {
			newCenters[s1.id] = shortest
		}
	}

	calculatePolygon(result, lines, newCenters, roads)
	return newCenters
}

// calculatePolygon assembles the intersection polygon from corner collisions
// between adjacent roads' boundary lines plus the endpoints of every trimmed
// road's sides, walking the roads in clockwise order.
func calculatePolygon(result *geometryResult, lines []roadLine, newCenters map[RoadID]orb.LineString, roads map[RoadID]inputRoad) {
	n := len(lines)
	endpoints := make([]orb.Point, 0, 4*n)
	for idx := 0; idx < n; idx++ {
		l := lines[idx]
		prev := lines[(idx-1+n)%n]
		next := lines[(idx+1)%n]

		// Corner between this road's right side and the previous road's left
		// side; second halves handle roads hitting at multiple points.
		if hit, _, ok := linesIntersection(secondHalf(l.fwdPl), secondHalf(prev.backPl)); ok {
			endpoints = append(endpoints, hit)
		}

		// The trimmed road's own edge across its end
		center := newCenters[l.id]
		hw := roads[l.id].halfWidth
		if right, ok := shiftLine(center, hw); ok {
			endpoints = append(endpoints, right[len(right)-1])
		}
		if left, ok := shiftLine(center, -hw); ok {
			endpoints = append(endpoints, left[len(left)-1])
		}

		if hit, _, ok := linesIntersection(secondHalf(l.backPl), secondHalf(next.fwdPl)); ok {
			endpoints = append(endpoints, hit)
		}
	}

	main := closeOffPolygon(approxDedupe(endpoints, dedupeEpsilon))

	// Bad polygons happen around weird short roads: the loop doubles back on
	// itself. Detect by re-sorting the corners around their center; if that
	// removes points, prefer the forcibly ordered version.
	deduped := make([]orb.Point, len(main)-1)
	copy(deduped, main[:len(main)-1])
	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i][0] == deduped[j][0] {
			return deduped[i][1] < deduped[j][1]
		}
		return deduped[i][0] < deduped[j][0]
	})
	deduped = approxDedupe(deduped, dedupeEpsilon)
	center := centerPoint(deduped)
	sort.Slice(deduped, func(i, j int) bool {
		return normalizeDegrees(angleOfSegment(center, deduped[i])) > normalizeDegrees(angleOfSegment(center, deduped[j]))
	})
	deduped = approxDedupe(deduped, dedupeEpsilon)
	deduped = closeOffPolygon(deduped)

	if len(main) == len(deduped) {
		result.polygon = orb.Ring(main)
	} else {
		result.bowtie = true
		result.polygon = orb.Ring(deduped)
	}
}

// pretrimmedGeometry builds the polygon for a consolidated intersection: the
// centers were already cut to the recorded merge points, so just connect the
// trimmed side endpoints.
func pretrimmedGeometry(result *geometryResult, lines []roadLine) map[RoadID]orb.LineString {
	newCenters := make(map[RoadID]orb.LineString, len(lines))
	endpoints := make([]orb.Point, 0, 2*len(lines))
	for _, l := range lines {
		newCenters[l.id] = l.center
		hw := planar.Distance(l.center[len(l.center)-1], l.fwdPl[len(l.fwdPl)-1])
		if right, ok := shiftLine(l.center, hw); ok {
			endpoints = append(endpoints, right[len(right)-1])
		}
		if left, ok := shiftLine(l.center, -hw); ok {
			endpoints = append(endpoints, left[len(left)-1])
		}
	}
	result.polygon = orb.Ring(closeOffPolygon(approxDedupe(endpoints, dedupeEpsilon)))
	return newCenters
}

// deadendGeometry handles termini and map edges: give the stub a small box so
// the road visibly ends, substituting for a real junction area.
func deadendGeometry(result *geometryResult, lines []roadLine, degenerateHalfLength float64) map[RoadID]orb.LineString {
	l := lines[0]
	trimLen := 4 * degenerateHalfLength

	center := l.center
	if lineLength(center) >= trimLen+3*distEpsilon {
		if sliced, ok := exactSlice(center, 0, lineLength(center)-trimLen); ok {
			center = sliced
		}
	} else {
		result.clampedTrims++
	}
	newCenters := map[RoadID]orb.LineString{l.id: center}

	hw := planar.Distance(l.center[len(l.center)-1], l.fwdPl[len(l.fwdPl)-1])
	end := center[len(center)-1]
	outward := angleOfSegment(center[len(center)-2], end)
	depth := lineLength(l.center) - lineLength(center)
	if depth < degenerateHalfLength {
		depth = degenerateHalfLength
	}

	var corners []orb.Point
	if right, ok := shiftLine(center, hw); ok {
		corners = append(corners, right[len(right)-1])
	}
	if left, ok := shiftLine(center, -hw); ok {
		corners = append(corners, left[len(left)-1])
	}
	for i := len(corners) - 1; i >= 0; i-- {
		pt := corners[i]
		corners = append(corners, orb.Point{
			pt[0] + depth*math.Cos(outward),
			pt[1] + depth*math.Sin(outward),
		})
	}
	result.polygon = orb.Ring(closeOffPolygon(approxDedupe(corners, dedupeEpsilon)))
	return newCenters
}

// onOffRamp special-cases three roads where one is a highway ramp. The
// general trim produces huge polygons at those shallow angles; instead trim
// the thin ramp where it merges into the thick road, shorten that thick road
// to the merge point and stretch the other thick road through the junction.
func onOffRamp(result *geometryResult, lines []roadLine, roads map[RoadID]inputRoad, degenerateHalfLength float64) (map[RoadID]orb.LineString, bool) {
	if len(lines) != 3 {
		return nil, false
	}
	anyRamp := false
	for _, l := range lines {
		if roads[l.id].isLink() {
			anyRamp = true
			break
		}
	}
	if !anyRamp {
		return nil, false
	}

	sorted := make([]roadLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi := roads[sorted[i].id].halfWidth
		wj := roads[sorted[j].id].halfWidth
		if wi == wj {
			return sorted[i].id < sorted[j].id
		}
		return wi < wj
	})
	thin := sorted[0]
	thick1 := sorted[1]
	thick2 := sorted[2]

	// Find where the thin road's boundaries hit the thick roads' boundaries,
	// preferring the hit that trims the thin road the least.
	type hitResult struct {
		trimmedThin  orb.LineString
		trimmedThick orb.LineString
		thickID      RoadID
	}
	var best *hitResult
	for _, thinPl := range []orb.LineString{thin.backPl, thin.fwdPl} {
		for _, thick := range []roadLine{thick1, thick2} {
			for _, thickPl := range []orb.LineString{thick.backPl, thick.fwdPl} {
				hit, _, ok := linesIntersection(thinPl, thickPl)
				if !ok {
					continue
				}
				thinAngle := angleAtPoint(thinPl, hit)
				trimTo, ok := lineCrossInfinite(reverseLine(thin.center), hit, thinAngle+math.Pi/2)
				if !ok {
					continue
				}
				trimmedThin, ok := sliceEndingAt(thin.center, trimTo)
				if !ok {
					continue
				}
				thickAngle := angleAtPoint(thickPl, hit)
				trimThickTo, ok := lineCrossInfinite(reverseLine(thick.center), hit, thickAngle+math.Pi/2)
				if !ok {
					continue
				}
				trimmedThick, ok := sliceEndingAt(thick.center, trimThickTo)
				if !ok {
					continue
				}
				if best == nil || lineLength(trimmedThin) < lineLength(best.trimmedThin) {
					best = &hitResult{trimmedThin, trimmedThick, thick.id}
				}
			}
		}
	}
	if best == nil {
		return nil, false
	}

	// The extra piece between the thick road's trim point and the
	// intersection must be long enough to thread the other thick road through
	extraLen := lineLength(roadLineFor(lines, best.thickID)) - lineLength(best.trimmedThick)
	if extraLen <= 2*degenerateHalfLength+3*distEpsilon {
		return nil, false
	}

	newCenters := map[RoadID]orb.LineString{
		thin.id:      best.trimmedThin,
		best.thickID: best.trimmedThick,
	}
	otherThick := thick1
	if thick1.id == best.thickID {
		otherThick = thick2
	}
	// Trim the pass-through thick road only minimally
	otherCenter := otherThick.center
	if lineLength(otherCenter) >= 2*degenerateHalfLength+3*distEpsilon {
		if sliced, ok := exactSlice(otherCenter, 0, lineLength(otherCenter)-2*degenerateHalfLength); ok {
			otherCenter = sliced
		}
	}
	newCenters[otherThick.id] = otherCenter

	// Polygon from the trimmed side endpoints, sorted around their center
	var endpoints []orb.Point
	for _, l := range lines {
		center := newCenters[l.id]
		hw := roads[l.id].halfWidth
		if right, ok := shiftLine(center, hw); ok {
			endpoints = append(endpoints, right[len(right)-1])
		}
		if left, ok := shiftLine(center, -hw); ok {
			endpoints = append(endpoints, left[len(left)-1])
		}
	}
	center := centerPoint(endpoints)
	sort.Slice(endpoints, func(i, j int) bool {
		return normalizeDegrees(angleOfSegment(center, endpoints[i])) > normalizeDegrees(angleOfSegment(center, endpoints[j]))
	})
	endpoints = approxDedupe(endpoints, dedupeEpsilon)
	result.polygon = orb.Ring(closeOffPolygon(endpoints))
	return newCenters, true
}

func (road inputRoad) isLink() bool {
	switch road.highway {
	case "motorway", "motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link":
		return true
	}
	return false
}

// angleAtPoint returns the direction of the segment closest to pt
func angleAtPoint(line orb.LineString, pt orb.Point) float64 {
	bestDist := math.Inf(1)
	bestAngle := 0.0
	for i := 1; i < len(line); i++ {
		closest := closestPointOnSegment(line[i-1], line[i], pt)
		d := planar.Distance(closest, pt)
		if d < bestDist {
			bestDist = d
			bestAngle = angleOfSegment(line[i-1], line[i])
		}
	}
	return bestAngle
}
