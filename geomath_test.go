package streetgraph

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestLineLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {3, 4}}
	require.InDelta(t, 5.0, lineLength(line), distEpsilon)
}

func TestReverseLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}, {2, 1}}
	reversed := reverseLine(line)
	require.Equal(t, orb.LineString{{2, 1}, {1, 0}, {0, 0}}, reversed)
	// The original must stay untouched
	require.Equal(t, orb.Point{0, 0}, line[0])
}

func TestNormalizeDegrees(t *testing.T) {
	require.InDelta(t, 90.0, normalizeDegrees(math.Pi/2), 1e-9)
	require.InDelta(t, 270.0, normalizeDegrees(-math.Pi/2), 1e-9)
	require.InDelta(t, 0.0, normalizeDegrees(2*math.Pi), 1e-9)
}

func TestPointAtDistance(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	require.Equal(t, orb.Point{5, 0}, pointAtDistance(line, 5))
	require.Equal(t, orb.Point{10, 5}, pointAtDistance(line, 15))
	// Clamps to the ends
	require.Equal(t, orb.Point{0, 0}, pointAtDistance(line, -1))
	require.Equal(t, orb.Point{10, 10}, pointAtDistance(line, 100))
}

func TestExactSlice(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	sliced, ok := exactSlice(line, 5, 15)
	require.True(t, ok)
	require.InDelta(t, 10.0, lineLength(sliced), distEpsilon)
	require.Equal(t, orb.Point{5, 0}, sliced[0])
	require.Equal(t, orb.Point{10, 5}, sliced[len(sliced)-1])
	// Interior vertex survives
	require.Contains(t, sliced, orb.Point{10, 0})

	// Empty result
	_, ok = exactSlice(line, 5, 5)
	require.False(t, ok)
	_, ok = exactSlice(line, 30, 40)
	require.False(t, ok)
}

func TestSliceEndingStartingAt(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}

	ending, ok := sliceEndingAt(line, orb.Point{4, 3})
	require.True(t, ok)
	require.InDelta(t, 4.0, lineLength(ending), distEpsilon)

	starting, ok := sliceStartingAt(line, orb.Point{4, 3})
	require.True(t, ok)
	require.InDelta(t, 6.0, lineLength(starting), distEpsilon)
}

func TestExtendLineToLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	extended := extendLineToLength(line, 25)
	require.InDelta(t, 25.0, lineLength(extended), distEpsilon)
	require.Equal(t, orb.Point{25, 0}, extended[len(extended)-1])
	// Already long enough: untouched
	same := extendLineToLength(line, 5)
	require.Equal(t, line, same)
}

func TestShiftLineStraight(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}

	right, ok := shiftLine(line, 2)
	require.True(t, ok)
	require.Equal(t, orb.LineString{{0, -2}, {10, -2}}, right)

	left, ok := shiftLine(line, -2)
	require.True(t, ok)
	require.Equal(t, orb.LineString{{0, 2}, {10, 2}}, left)
}

func TestShiftLineCorner(t *testing.T) {
	// Right-angle corner gets a mitered joint
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	shifted, ok := shiftLine(line, -1)
	require.True(t, ok)
	require.Equal(t, orb.Point{0, 1}, shifted[0])
	require.Equal(t, orb.Point{9, 1}, shifted[1])
	require.Equal(t, orb.Point{9, 10}, shifted[len(shifted)-1])
}

func TestSegmentsIntersection(t *testing.T) {
	hit, ok := segmentsIntersection(orb.Point{0, 0}, orb.Point{10, 10}, orb.Point{0, 10}, orb.Point{10, 0})
	require.True(t, ok)
	require.Equal(t, orb.Point{5, 5}, hit)

	_, ok = segmentsIntersection(orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{5, 0}, orb.Point{6, 1})
	require.False(t, ok)
}

func TestLinesIntersection(t *testing.T) {
	l1 := orb.LineString{{0, 5}, {10, 5}}
	l2 := orb.LineString{{5, 0}, {5, 10}}
	hit, angle, ok := linesIntersection(l1, l2)
	require.True(t, ok)
	require.Equal(t, orb.Point{5, 5}, hit)
	require.InDelta(t, 0.0, angle, 1e-9)
}

func TestLineCrossInfinite(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	hit, ok := lineCrossInfinite(line, orb.Point{4, -3}, math.Pi/2)
	require.True(t, ok)
	require.InDelta(t, 4.0, hit[0], 1e-6)
	require.InDelta(t, 0.0, hit[1], 1e-6)
}

func TestSecondHalf(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	half := secondHalf(line)
	require.InDelta(t, 5.0, lineLength(half), distEpsilon)
	require.Equal(t, orb.Point{10, 0}, half[len(half)-1])
}

func TestSimplifyLine(t *testing.T) {
	// The middle point is within epsilon of the straight line
	line := orb.LineString{{0, 0}, {5, 0.1}, {10, 0}}
	simplified := simplifyLine(line, 1.0)
	require.Len(t, simplified, 2)
}

func TestApproxDedupe(t *testing.T) {
	pts := []orb.Point{{0, 0}, {0.01, 0.01}, {5, 5}, {5.05, 5}, {10, 10}}
	deduped := approxDedupe(pts, 0.1)
	require.Len(t, deduped, 3)
}

func TestCloseOffPolygon(t *testing.T) {
	pts := []orb.Point{{0, 0}, {10, 0}, {10, 10}}
	closed := closeOffPolygon(pts)
	require.Len(t, closed, 4)
	require.Equal(t, closed[0], closed[len(closed)-1])
	// Already closed: no doubled point
	closedAgain := closeOffPolygon(closed)
	require.Len(t, closedAgain, 4)
}

func TestAngleBetweenLines(t *testing.T) {
	l1 := orb.LineString{{0, 0}, {10, 0}}
	l2 := orb.LineString{{0, 0}, {0, 10}}
	require.InDelta(t, math.Pi/2, angleBetweenLines(l1, l2), 1e-9)
	require.InDelta(t, 0.0, angleBetweenLines(l1, l1), 1e-9)
}
