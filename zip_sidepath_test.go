package streetgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func TestZipParallelCycleway(t *testing.T) {
	net := testNet()
	m1 := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	m2 := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	main := mustAddRoad(t, net, m1.ID, m2.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))

	bikeLanes := []Lane{
		newLane(LANE_BIKING, LANE_BACKWARD),
		newLane(LANE_BIKING, LANE_FORWARD),
	}
	cyclewayTags := osm.Tags{{Key: "highway", Value: "cycleway"}}
	s1 := net.AddIntersection(orb.Point{0, 6}, CONTROL_UNCONTROLLED)
	s2 := net.AddIntersection(orb.Point{100, 6}, CONTROL_UNCONTROLLED)
	sidepath := mustAddRoad(t, net, s1.ID, s2.ID, orb.LineString{{0, 6}, {100, 6}}, bikeLanes, cyclewayTags)

	conn1 := mustAddRoad(t, net, s1.ID, m1.ID, orb.LineString{{0, 6}, {0, 0}},
		[]Lane{newLane(LANE_BIKING, LANE_FORWARD)}, cyclewayTags)
	conn2 := mustAddRoad(t, net, s2.ID, m2.ID, orb.LineString{{100, 6}, {100, 0}},
		[]Lane{newLane(LANE_BIKING, LANE_FORWARD)}, cyclewayTags)

	net.zipSidepaths()

	_, err := net.Road(sidepath.ID)
	require.ErrorIs(t, err, ErrRoadNotFound)
	_, err = net.Road(conn1.ID)
	require.ErrorIs(t, err, ErrRoadNotFound)
	_, err = net.Road(conn2.ID)
	require.ErrorIs(t, err, ErrRoadNotFound)

	// The bike lanes landed on the sidepath's side of the main road, kept apart
	// by a buffer
	require.Equal(t, []LaneType{LANE_BIKING, LANE_BIKING, LANE_BUFFER, LANE_DRIVING, LANE_DRIVING},
		laneTypes(main.lanes))
	require.Equal(t, BUFFER_PLANTERS, main.lanes[2].Buffer)
	require.Equal(t, 1, net.RoadsNum())
	require.NoError(t, net.CheckInvariants())
}

func TestSimplePathHonorsOneways(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	c := net.AddIntersection(orb.Point{200, 0}, CONTROL_UNCONTROLLED)
	mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, onewayDriving(), residentialTags("Main"))
	mustAddRoad(t, net, b.ID, c.ID, orb.LineString{{100, 0}, {200, 0}}, onewayDriving(), residentialTags("Main"))

	path, ok := net.simplePath(a.ID, c.ID)
	require.True(t, ok)
	require.Len(t, path, 2)

	// Against the arrows there is no way back
	_, ok = net.simplePath(c.ID, a.ID)
	require.False(t, ok)
}

func TestSidepathPatternRejectsUnrelatedRoads(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	lonely := mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}},
		[]Lane{newLane(LANE_BIKING, LANE_FORWARD)}, osm.Tags{{Key: "highway", Value: "cycleway"}})

	// No connectors, no parallel main road
	_, ok := net.newSidepath(lonely.ID)
	require.False(t, ok)
}
