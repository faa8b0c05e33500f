package streetgraph

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func TestOverwriteOSMTagsForWay(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	road := mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Old"))
	road.osmWayIDs = []osm.WayID{101}

	err := net.OverwriteOSMTagsForWay(101, osm.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "name", Value: "New"},
		{Key: "lanes", Value: "4"},
	})
	require.NoError(t, err)
	require.Equal(t, "New", road.name)
	require.Equal(t, "primary", road.highway)
	require.Len(t, road.lanes, 4)

	// Geometry is fresh again right after the edit
	_, err = road.TrimmedCenterLine()
	require.NoError(t, err)
	polygon, err := a.Polygon()
	require.NoError(t, err)
	require.NotEmpty(t, polygon)

	require.ErrorIs(t, net.OverwriteOSMTagsForWay(999, osm.Tags{}), ErrWayNotTracked)
}

func TestWayXMLRoundTrip(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	road := mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))
	road.osmWayIDs = []osm.WayID{202}

	data, err := net.WayToXML(202)
	require.NoError(t, err)
	require.Contains(t, data, "<way")
	require.Contains(t, data, "Main")

	wayID, tags, err := WayFromXML(data)
	require.NoError(t, err)
	require.Equal(t, osm.WayID(202), wayID)
	require.Equal(t, "Main", tags.Find("name"))

	edited := strings.Replace(data, "Main", "Renamed", 1)
	require.NoError(t, net.ApplyWayXML(edited))
	require.Equal(t, "Renamed", road.name)

	_, err = net.WayToXML(404)
	require.ErrorIs(t, err, ErrWayNotTracked)
}

func TestCollapseShortRoadIsIdempotent(t *testing.T) {
	net := testNet()
	require.NoError(t, net.CollapseShortRoad(RoadID(12345)))
}

func TestCollapseIntersectionEdit(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	m := net.AddIntersection(orb.Point{50, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	mustAddRoad(t, net, a.ID, m.ID, orb.LineString{{0, 0}, {50, 0}}, twoWayDriving(), residentialTags("Main"))
	mustAddRoad(t, net, m.ID, b.ID, orb.LineString{{50, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))

	require.NoError(t, net.CollapseIntersection(m.ID))
	_, err := net.Intersection(m.ID)
	require.ErrorIs(t, err, ErrIntersectionNotFound)
	require.Equal(t, 1, net.RoadsNum())

	// The joined road and the surviving ends come back with fresh geometry
	for _, road := range net.roads {
		_, err := road.TrimmedCenterLine()
		require.NoError(t, err)
	}
	_, err = a.Polygon()
	require.NoError(t, err)

	// Collapsing an intersection that's already gone is a no-op
	require.NoError(t, net.CollapseIntersection(m.ID))
}

func TestZipSidepathRejectsNonSidepath(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	road := mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Main"))

	require.ErrorIs(t, net.ZipSidepath(road.ID), ErrTopology)
	require.NoError(t, net.ZipSidepath(RoadID(999)))
}
