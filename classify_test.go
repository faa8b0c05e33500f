package streetgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestClassifyFourWayCross(t *testing.T) {
	net, center, roads := buildCross(t)
	net.ClassifyIntersections()

	inter, _ := net.Intersection(center)
	require.Equal(t, KIND_INTERSECTION, inter.Kind())

	for _, id := range roads {
		road, _ := net.Road(id)
		terminus, _ := net.Intersection(road.targetIntersectionID)
		require.Equal(t, KIND_TERMINUS, terminus.Kind())
	}
}

func TestClassifyConnection(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{-50, 0}, CONTROL_UNCONTROLLED)
	m := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{50, 0}, CONTROL_UNCONTROLLED)
	mustAddRoad(t, net, a.ID, m.ID, orb.LineString{{-50, 0}, {0, 0}}, twoWayDriving(), residentialTags("Main"))
	mustAddRoad(t, net, m.ID, b.ID, orb.LineString{{0, 0}, {50, 0}}, twoWayDriving(), residentialTags("Main"))

	net.ClassifyIntersections()
	inter, _ := net.Intersection(m.ID)
	require.Equal(t, KIND_CONNECTION, inter.Kind())
}

func TestClassifyMapEdge(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	edge := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	edge.mapEdge = true
	mustAddRoad(t, net, a.ID, edge.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))

	net.ClassifyIntersections()
	require.Equal(t, KIND_MAP_EDGE, edge.Kind())
	require.Equal(t, KIND_TERMINUS, a.Kind())
}

func TestClassifyMergeFork(t *testing.T) {
	net := testNet()
	center := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	aEnd := net.AddIntersection(orb.Point{-100, 50}, CONTROL_UNCONTROLLED)
	bEnd := net.AddIntersection(orb.Point{-100, -50}, CONTROL_UNCONTROLLED)
	cEnd := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)

	// Two one-ways merging into one: restrictions leave only A->C and B->C
	roadA := mustAddRoad(t, net, aEnd.ID, center.ID, orb.LineString{{-100, 50}, {0, 0}}, onewayDriving(), residentialTags("Main"))
	roadB := mustAddRoad(t, net, bEnd.ID, center.ID, orb.LineString{{-100, -50}, {0, 0}}, onewayDriving(), residentialTags("Main"))
	roadC := mustAddRoad(t, net, center.ID, cEnd.ID, orb.LineString{{0, 0}, {100, 0}}, onewayDriving(), residentialTags("Main"))

	roadA.turnRestrictions = []TurnRestriction{{Type: RESTRICTION_ONLY_ALLOW_TURNS, To: roadC.ID}}
	roadB.turnRestrictions = []TurnRestriction{{Type: RESTRICTION_ONLY_ALLOW_TURNS, To: roadC.ID}}
	roadC.turnRestrictions = []TurnRestriction{
		{Type: RESTRICTION_BAN_TURNS, To: roadA.ID},
		{Type: RESTRICTION_BAN_TURNS, To: roadB.ID},
	}

	net.ClassifyIntersections()
	require.Equal(t, KIND_FORK, center.Kind())
}

func TestClassifyThreeWayWithCrossingTurns(t *testing.T) {
	net := testNet()
	center := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	for _, pt := range []orb.Point{{-100, 0}, {100, 0}, {0, 100}} {
		outer := net.AddIntersection(pt, CONTROL_UNCONTROLLED)
		mustAddRoad(t, net, center.ID, outer.ID, orb.LineString{{0, 0}, pt}, twoWayDriving(), residentialTags("Main"))
	}

	// An unrestricted T junction has left turns crossing oncoming traffic
	net.ClassifyIntersections()
	require.Equal(t, KIND_INTERSECTION, center.Kind())
}

func TestClassificationResetsOnChange(t *testing.T) {
	net, center, roads := buildCross(t)
	net.ClassifyIntersections()
	inter, _ := net.Intersection(center)
	require.Equal(t, KIND_INTERSECTION, inter.Kind())

	_, err := net.RemoveRoad(roads["north"])
	require.NoError(t, err)
	require.Equal(t, KIND_UNCLASSIFIED, inter.Kind())
}

func TestTurnIsAllowed(t *testing.T) {
	src := &Road{ID: 1}
	require.True(t, turnIsAllowed(src, 2))

	src.turnRestrictions = []TurnRestriction{{Type: RESTRICTION_BAN_TURNS, To: 2}}
	require.False(t, turnIsAllowed(src, 2))
	require.True(t, turnIsAllowed(src, 3))

	src.turnRestrictions = []TurnRestriction{{Type: RESTRICTION_ONLY_ALLOW_TURNS, To: 2}}
	require.True(t, turnIsAllowed(src, 2))
	require.False(t, turnIsAllowed(src, 3))
}

func TestCalcConflict(t *testing.T) {
	require.Equal(t, CONFLICT_DIVERGE, calcConflict(0, 1, 0, 2))
	require.Equal(t, CONFLICT_MERGE, calcConflict(0, 2, 1, 2))
	require.Equal(t, CONFLICT_CROSS, calcConflict(0, 2, 1, 3))
	require.Equal(t, CONFLICT_UNCONTESTED, calcConflict(0, 1, 2, 3))
}
