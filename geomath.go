package streetgraph

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

const (
	// distEpsilon is the tolerance for comparing planar distances (meters)
	distEpsilon = 0.01
	// dedupeEpsilon is used when collapsing near-identical polygon corners
	dedupeEpsilon = 0.1
)

func lineLength(line orb.LineString) float64 {
	return planar.Length(line)
}

func reverseLine(line orb.LineString) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[len(line)-1-i] = pt
	}
	return newLine
}

// angleOfSegment returns direction of p->q in radians
func angleOfSegment(p, q orb.Point) float64 {
	return math.Atan2(q[1]-p[1], q[0]-p[0])
}

// normalizeDegrees brings an angle (radians) into [0, 360) degrees
func normalizeDegrees(rad float64) float64 {
	deg := rad * 180.0 / math.Pi
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// angleBetweenLines returns angle between two lines
//
// Note: panics if number of points in any line is less than 2
func angleBetweenLines(l1 orb.LineString, l2 orb.LineString) float64 {
	angle1 := math.Atan2(l1[len(l1)-1].Y()-l1[0].Y(), l1[len(l1)-1].X()-l1[0].X())
	angle2 := math.Atan2(l2[len(l2)-1].Y()-l2[0].Y(), l2[len(l2)-1].X()-l2[0].X())
	angle := angle2 - angle1
	if angle < -1*math.Pi {
		angle += 2 * math.Pi
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// pointAtDistance walks `dist` meters along the line. Clamps to endpoints.
func pointAtDistance(line orb.LineString, dist float64) orb.Point {
	if dist <= 0 || len(line) < 2 {
		return line[0]
	}
	walked := 0.0
	for i := 1; i < len(line); i++ {
		seg := planar.Distance(line[i-1], line[i])
		if walked+seg >= dist {
			t := (dist - walked) / seg
			return orb.Point{
				line[i-1][0] + t*(line[i][0]-line[i-1][0]),
				line[i-1][1] + t*(line[i][1]-line[i-1][1]),
			}
		}
		walked += seg
	}
	return line[len(line)-1]
}

// exactSlice returns the part of the line between `from` and `to` meters from
// its start. Bounds are clamped; returns false when the result would be empty.
func exactSlice(line orb.LineString, from, to float64) (orb.LineString, bool) {
	total := lineLength(line)
	if from < 0 {
		from = 0
	}
	if to > total {
		to = total
	}
	if to-from <= distEpsilon {
		return nil, false
	}
	result := orb.LineString{pointAtDistance(line, from)}
	walked := 0.0
	for i := 1; i < len(line); i++ {
		seg := planar.Distance(line[i-1], line[i])
		walked += seg
		if walked > from+distEpsilon && walked < to-distEpsilon {
			result = append(result, line[i])
		}
	}
	result = append(result, pointAtDistance(line, to))
	if len(result) < 2 || planar.Distance(result[0], result[len(result)-1]) <= distEpsilon {
		return nil, false
	}
	return result, true
}

// closestPointOnSegment projects pt onto segment [a, b]
func closestPointOnSegment(a, b, pt orb.Point) orb.Point {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((pt[0]-a[0])*dx + (pt[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}

// distAlongLine returns the arc distance from the line's start to the
// projection of pt onto the line (the closest location).
func distAlongLine(line orb.LineString, pt orb.Point) float64 {
	bestDist := math.Inf(1)
	bestAlong := 0.0
	walked := 0.0
	for i := 1; i < len(line); i++ {
		closest := closestPointOnSegment(line[i-1], line[i], pt)
		d := planar.Distance(closest, pt)
		if d < bestDist {
			bestDist = d
			bestAlong = walked + planar.Distance(line[i-1], closest)
		}
		walked += planar.Distance(line[i-1], line[i])
	}
	return bestAlong
}

// sliceEndingAt cuts the line at the projection of pt, keeping the start.
func sliceEndingAt(line orb.LineString, pt orb.Point) (orb.LineString, bool) {
	return exactSlice(line, 0, distAlongLine(line, pt))
}

// sliceStartingAt cuts the line at the projection of pt, keeping the end.
func sliceStartingAt(line orb.LineString, pt orb.Point) (orb.LineString, bool) {
	return exactSlice(line, distAlongLine(line, pt), lineLength(line))
}

// extendLineToLength lengthens the line along its last segment's direction
// until the total length reaches `target`. No-op when already long enough.
func extendLineToLength(line orb.LineString, target float64) orb.LineString {
	current := lineLength(line)
	if current >= target || len(line) < 2 {
		return line
	}
	last := line[len(line)-1]
	prev := line[len(line)-2]
	angle := angleOfSegment(prev, last)
	extra := target - current
	extended := make(orb.LineString, len(line))
	copy(extended, line)
	extended[len(extended)-1] = orb.Point{
		last[0] + extra*math.Cos(angle),
		last[1] + extra*math.Sin(angle),
	}
	return extended
}

// shiftLine offsets the whole polyline perpendicularly. Positive offset moves
// it to the right of the direction of travel, negative to the left. Interior
// joints are mitered; near-parallel joints fall back to the raw segment ends
// to avoid spikes.
func shiftLine(line orb.LineString, offset float64) (orb.LineString, bool) {
	if len(line) < 2 {
		return nil, false
	}
	type offsetSegment struct {
		a, b orb.Point
	}
	segments := make([]offsetSegment, 0, len(line)-1)
	for i := 1; i < len(line); i++ {
		p, q := line[i-1], line[i]
		dx := q[0] - p[0]
		dy := q[1] - p[1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Right-hand normal for y-up coordinates
		nx := dy / length * offset
		ny := -dx / length * offset
		segments = append(segments, offsetSegment{
			a: orb.Point{p[0] + nx, p[1] + ny},
			b: orb.Point{q[0] + nx, q[1] + ny},
		})
	}
	if len(segments) == 0 {
		return nil, false
	}
	shifted := orb.LineString{segments[0].a}
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if hit, ok := infiniteLinesIntersection(prev.a, prev.b, cur.a, cur.b); ok {
			// Reject runaway miters at extremely sharp joints
			if planar.Distance(hit, prev.b) < 10*math.Abs(offset)+distEpsilon {
				shifted = append(shifted, hit)
				continue
			}
		}
		shifted = append(shifted, prev.b, cur.a)
	}
	shifted = append(shifted, segments[len(segments)-1].b)
	return shifted, true
}

// infiniteLinesIntersection intersects the infinite lines through (a1, a2) and
// (b1, b2). Returns false for near-parallel lines.
func infiniteLinesIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	d1x := a2[0] - a1[0]
	d1y := a2[1] - a1[1]
	d2x := b2[0] - b1[0]
	d2y := b2[1] - b1[1]
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < 1e-9 {
		return orb.Point{}, false
	}
	t := ((b1[0]-a1[0])*d2y - (b1[1]-a1[1])*d2x) / denom
	return orb.Point{a1[0] + t*d1x, a1[1] + t*d1y}, true
}

// segmentsIntersection intersects two finite segments
func segmentsIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	d1x := a2[0] - a1[0]
	d1y := a2[1] - a1[1]
	d2x := b2[0] - b1[0]
	d2y := b2[1] - b1[1]
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < 1e-12 {
		return orb.Point{}, false
	}
	t := ((b1[0]-a1[0])*d2y - (b1[1]-a1[1])*d2x) / denom
	u := ((b1[0]-a1[0])*d1y - (b1[1]-a1[1])*d1x) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return orb.Point{}, false
	}
	return orb.Point{a1[0] + t*d1x, a1[1] + t*d1y}, true
}

// linesIntersection returns the first point where l1 crosses l2, walking along
// l1 from its start, plus the direction (radians) of l1's segment at the hit.
func linesIntersection(l1, l2 orb.LineString) (orb.Point, float64, bool) {
	for i := 1; i < len(l1); i++ {
		for j := 1; j < len(l2); j++ {
			if hit, ok := segmentsIntersection(l1[i-1], l1[i], l2[j-1], l2[j]); ok {
				return hit, angleOfSegment(l1[i-1], l1[i]), true
			}
		}
	}
	return orb.Point{}, 0, false
}

// lineCrossInfinite returns the first point where the polyline crosses the
// infinite line passing through pt with the given direction.
func lineCrossInfinite(line orb.LineString, pt orb.Point, angle float64) (orb.Point, bool) {
	far := 1e7
	a := orb.Point{pt[0] - far*math.Cos(angle), pt[1] - far*math.Sin(angle)}
	b := orb.Point{pt[0] + far*math.Cos(angle), pt[1] + far*math.Sin(angle)}
	for i := 1; i < len(line); i++ {
		if hit, ok := segmentsIntersection(line[i-1], line[i], a, b); ok {
			return hit, true
		}
	}
	return orb.Point{}, false
}

// secondHalf returns the half of the line closest to its end
func secondHalf(line orb.LineString) orb.LineString {
	half, ok := exactSlice(line, lineLength(line)/2.0, lineLength(line))
	if !ok {
		return line
	}
	return half
}

func simplifyLine(line orb.LineString, epsilon float64) orb.LineString {
	if len(line) < 3 {
		return line
	}
	cloned := line.Clone()
	return simplify.DouglasPeucker(epsilon).Simplify(cloned).(orb.LineString)
}

func approxDedupe(pts []orb.Point, epsilon float64) []orb.Point {
	deduped := make([]orb.Point, 0, len(pts))
	for _, pt := range pts {
		if len(deduped) == 0 || planar.Distance(deduped[len(deduped)-1], pt) > epsilon {
			deduped = append(deduped, pt)
		}
	}
	return deduped
}

func centerPoint(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sumX, sumY float64
	for _, pt := range pts {
		sumX += pt[0]
		sumY += pt[1]
	}
	return orb.Point{sumX / float64(len(pts)), sumY / float64(len(pts))}
}

// closeOffPolygon makes sure the corner list forms a closed ring
func closeOffPolygon(pts []orb.Point) []orb.Point {
	if len(pts) == 0 {
		return pts
	}
	if planar.Distance(pts[len(pts)-1], pts[0]) <= dedupeEpsilon {
		pts = pts[:len(pts)-1]
	}
	return append(pts, pts[0])
}
