package streetgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func testNet() *StreetNetwork {
	options := DefaultOptions()
	options.InferSidewalks = false
	return NewStreetNetwork(options)
}

func twoWayDriving() []Lane {
	return []Lane{
		newLane(LANE_DRIVING, LANE_BACKWARD),
		newLane(LANE_DRIVING, LANE_FORWARD),
	}
}

func onewayDriving() []Lane {
	return []Lane{newLane(LANE_DRIVING, LANE_FORWARD)}
}

func residentialTags(name string) osm.Tags {
	return osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "name", Value: name},
	}
}

func mustAddRoad(t *testing.T, net *StreetNetwork, source, target IntersectionID, geom orb.LineString, lanes []Lane, tags osm.Tags) *Road {
	t.Helper()
	road, err := net.AddRoad(source, target, geom, lanes, tags)
	require.NoError(t, err)
	return road
}

// buildCross makes a four-way crossing at the origin with 100 meter arms to the
// north, south, east and west. Roads run from the center outward.
func buildCross(t *testing.T) (*StreetNetwork, IntersectionID, map[string]RoadID) {
	t.Helper()
	net := testNet()
	center := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	arms := map[string]orb.Point{
		"north": {0, 100},
		"south": {0, -100},
		"east":  {100, 0},
		"west":  {-100, 0},
	}
	roads := make(map[string]RoadID, len(arms))
	for _, name := range []string{"north", "south", "east", "west"} {
		outer := net.AddIntersection(arms[name], CONTROL_UNCONTROLLED)
		road := mustAddRoad(t, net, center.ID, outer.ID,
			orb.LineString{{0, 0}, arms[name]}, twoWayDriving(), residentialTags(name+" street"))
		roads[name] = road.ID
	}
	return net, center.ID, roads
}

func TestAddRoadValidation(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)

	_, err := net.AddRoad(a.ID, a.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), nil)
	require.ErrorIs(t, err, ErrTopology)

	_, err = net.AddRoad(a.ID, IntersectionID(42), orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), nil)
	require.ErrorIs(t, err, ErrTopology)

	_, err = net.AddRoad(a.ID, b.ID, orb.LineString{{0, 0}}, twoWayDriving(), nil)
	require.ErrorIs(t, err, ErrTopology)

	road, err := net.AddRoad(a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))
	require.NoError(t, err)
	require.Equal(t, "Main", road.name)
	require.Equal(t, "residential", road.highway)
	require.NoError(t, net.CheckInvariants())
}

func TestClockwiseRoadOrdering(t *testing.T) {
	net, center, roads := buildCross(t)

	ordered := net.RoadsPerIntersection(center)
	require.Len(t, ordered, 4)
	// Descending angle in y-up coordinates: south, west, north, east
	require.Equal(t, []RoadID{roads["south"], roads["west"], roads["north"], roads["east"]}, ordered)
}

func TestRemoveRoadKeepsAdjacencyConsistent(t *testing.T) {
	net, center, roads := buildCross(t)

	removed, err := net.RemoveRoad(roads["north"])
	require.NoError(t, err)
	require.Equal(t, roads["north"], removed.ID)
	require.Len(t, net.RoadsPerIntersection(center), 3)
	require.NoError(t, net.CheckInvariants())

	_, err = net.RemoveRoad(roads["north"])
	require.ErrorIs(t, err, ErrRoadNotFound)

	// The orphaned terminus can now be deleted
	orphan := removed.targetIntersectionID
	require.NoError(t, net.DeleteIntersection(orphan))
	_, err = net.Intersection(orphan)
	require.ErrorIs(t, err, ErrIntersectionNotFound)
}

func TestDeleteIntersectionWithRoadsFails(t *testing.T) {
	net, center, _ := buildCross(t)
	require.ErrorIs(t, net.DeleteIntersection(center), ErrTopology)
}

func TestDerivedGeometryStartsStale(t *testing.T) {
	net, center, roads := buildCross(t)

	road, err := net.Road(roads["east"])
	require.NoError(t, err)
	_, err = road.TrimmedCenterLine()
	require.ErrorIs(t, err, ErrStaleGeometry)

	inter, err := net.Intersection(center)
	require.NoError(t, err)
	_, err = inter.Polygon()
	require.ErrorIs(t, err, ErrStaleGeometry)
}

func TestMutationInvalidatesGeometry(t *testing.T) {
	net, center, roads := buildCross(t)
	require.NoError(t, net.GenerateIntersectionGeometry())

	east, _ := net.Road(roads["east"])
	_, err := east.TrimmedCenterLine()
	require.NoError(t, err)

	_, err = net.RemoveRoad(roads["north"])
	require.NoError(t, err)

	// Everything touching the shared intersection is stale again
	_, err = east.TrimmedCenterLine()
	require.ErrorIs(t, err, ErrStaleGeometry)
	inter, _ := net.Intersection(center)
	_, err = inter.Polygon()
	require.ErrorIs(t, err, ErrStaleGeometry)
}

func TestRoadAccessors(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{50, 0}, CONTROL_UNCONTROLLED)
	road := mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {50, 0}}, twoWayDriving(), residentialTags("Main"))

	require.Equal(t, a.ID, road.SourceIntersectionID())
	require.Equal(t, b.ID, road.TargetIntersectionID())
	require.Equal(t, b.ID, road.otherSide(a.ID))
	require.True(t, road.touches(a.ID))
	require.False(t, road.touches(IntersectionID(99)))
	require.InDelta(t, 5.0, road.TotalWidth(), 1e-9)
	require.InDelta(t, 50.0, road.untrimmedLength(), distEpsilon)
	require.False(t, road.isOneway())
	require.True(t, road.isDriveable())
	require.False(t, road.isSidepath())
}
