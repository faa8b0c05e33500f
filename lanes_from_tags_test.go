package streetgraph

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func laneTypes(lanes []Lane) []LaneType {
	out := make([]LaneType, len(lanes))
	for i, lane := range lanes {
		out[i] = lane.Type
	}
	return out
}

func laneDirections(lanes []Lane) []LaneDirection {
	out := make([]LaneDirection, len(lanes))
	for i, lane := range lanes {
		out[i] = lane.Direction
	}
	return out
}

func TestResidentialDefaults(t *testing.T) {
	tags := osm.Tags{{Key: "highway", Value: "residential"}}

	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_DRIVING, LANE_DRIVING}, laneTypes(lanes))
	require.Equal(t, []LaneDirection{LANE_BACKWARD, LANE_FORWARD}, laneDirections(lanes))

	options.InferSidewalks = true
	lanes = lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_SIDEWALK, LANE_DRIVING, LANE_DRIVING, LANE_SIDEWALK}, laneTypes(lanes))
}

func TestOnewayResidentialInfersBothSidewalks(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "oneway", Value: "yes"},
	}
	lanes := lanesFromTags(tags, DefaultOptions())
	require.Equal(t, []LaneType{LANE_SIDEWALK, LANE_DRIVING, LANE_SIDEWALK}, laneTypes(lanes))
	require.Equal(t, LANE_FORWARD, lanes[1].Direction)
}

func TestExplicitLaneCounts(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "lanes", Value: "4"},
		{Key: "lanes:forward", Value: "3"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_DRIVING, LANE_DRIVING, LANE_DRIVING, LANE_DRIVING}, laneTypes(lanes))
	require.Equal(t, []LaneDirection{LANE_BACKWARD, LANE_FORWARD, LANE_FORWARD, LANE_FORWARD}, laneDirections(lanes))
}

func TestBuswayConvertsCurbLanes(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "secondary"},
		{Key: "lanes", Value: "4"},
		{Key: "busway", Value: "lane"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_BUS, LANE_DRIVING, LANE_DRIVING, LANE_BUS}, laneTypes(lanes))
}

func TestTurnLanes(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "oneway", Value: "yes"},
		{Key: "lanes", Value: "3"},
		{Key: "turn:lanes", Value: "left|through|through;right"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Len(t, lanes, 3)
	require.Equal(t, []string{"left"}, lanes[0].AllowedTurns)
	require.Equal(t, []string{"through"}, lanes[1].AllowedTurns)
	require.Equal(t, []string{"through", "right"}, lanes[2].AllowedTurns)
}

func TestCyclewayTagsOnDrivingRoad(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "tertiary"},
		{Key: "cycleway", Value: "lane"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_BIKING, LANE_DRIVING, LANE_DRIVING, LANE_BIKING}, laneTypes(lanes))
	require.Equal(t, LANE_BACKWARD, lanes[0].Direction)
	require.Equal(t, LANE_FORWARD, lanes[3].Direction)
}

func TestSeparateCyclewayHighway(t *testing.T) {
	oneway := osm.Tags{
		{Key: "highway", Value: "cycleway"},
		{Key: "oneway", Value: "yes"},
	}
	lanes := lanesFromTags(oneway, DefaultOptions())
	require.Equal(t, []LaneType{LANE_BIKING}, laneTypes(lanes))

	shared := osm.Tags{
		{Key: "highway", Value: "cycleway"},
		{Key: "foot", Value: "yes"},
	}
	lanes = lanesFromTags(shared, DefaultOptions())
	require.Equal(t, []LaneType{LANE_SHARED_USE, LANE_SHARED_USE}, laneTypes(lanes))
}

func TestFootwayMappedAsSidewalk(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "footway"},
		{Key: "footway", Value: "sidewalk"},
	}
	lanes := lanesFromTags(tags, DefaultOptions())
	require.Equal(t, []LaneType{LANE_SIDEWALK}, laneTypes(lanes))
}

func TestMotorwayGetsShouldersNoSidewalks(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "motorway"},
		{Key: "oneway", Value: "yes"},
	}
	lanes := lanesFromTags(tags, DefaultOptions())
	types := laneTypes(lanes)
	require.NotContains(t, types, LANE_SIDEWALK)
	require.Contains(t, types, LANE_SHOULDER)
	driving := 0
	for _, lt := range types {
		if lt == LANE_DRIVING {
			driving++
		}
	}
	require.Equal(t, 4, driving)
}

func TestLeftHandTrafficMirrorsAssembly(t *testing.T) {
	tags := osm.Tags{{Key: "highway", Value: "residential"}}
	options := DefaultOptions()
	options.InferSidewalks = false
	options.DrivingSide = DRIVING_SIDE_LEFT
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneDirection{LANE_FORWARD, LANE_BACKWARD}, laneDirections(lanes))
}

func TestSharedCenterTurnLane(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "secondary"},
		{Key: "lanes", Value: "2"},
		{Key: "lanes:both_ways", Value: "1"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	require.Equal(t, []LaneType{LANE_DRIVING, LANE_SHARED_LEFT_TURN, LANE_DRIVING}, laneTypes(lanes))
}

func TestMaxspeedOnDrivingLanes(t *testing.T) {
	tags := osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "maxspeed", Value: "30 mph"},
	}
	options := DefaultOptions()
	options.InferSidewalks = false
	lanes := lanesFromTags(tags, options)
	for _, lane := range lanes {
		require.InDelta(t, 48.28, lane.SpeedLimit, 0.01)
	}
}

func TestLightRailTracks(t *testing.T) {
	tags := osm.Tags{
		{Key: "railway", Value: "tram"},
		{Key: "tracks", Value: "2"},
	}
	lanes := lanesFromTags(tags, DefaultOptions())
	require.Equal(t, []LaneType{LANE_LIGHT_RAIL, LANE_LIGHT_RAIL}, laneTypes(lanes))
	require.Equal(t, []LaneDirection{LANE_BACKWARD, LANE_FORWARD}, laneDirections(lanes))
}
