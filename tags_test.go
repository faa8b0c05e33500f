package streetgraph

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func TestParseIntTag(t *testing.T) {
	tags := osm.Tags{
		{Key: "lanes", Value: "3"},
		{Key: "tracks", Value: "3;4"},
		{Key: "level", Value: "abc"},
	}
	parsed, ok := parseIntTag(tags, "lanes")
	require.True(t, ok)
	require.Equal(t, 3, parsed)

	parsed, ok = parseIntTag(tags, "tracks")
	require.True(t, ok)
	require.Equal(t, 3, parsed)

	_, ok = parseIntTag(tags, "level")
	require.False(t, ok)
	_, ok = parseIntTag(tags, "missing")
	require.False(t, ok)
}

func TestParseLayer(t *testing.T) {
	require.Equal(t, -1, parseLayer(osm.Tags{{Key: "layer", Value: "-1"}}))
	require.Equal(t, 2, parseLayer(osm.Tags{{Key: "layer", Value: "2"}}))
	require.Equal(t, 0, parseLayer(osm.Tags{}))
}

func TestParseMaxspeed(t *testing.T) {
	require.InDelta(t, 50.0, parseMaxspeed(osm.Tags{{Key: "maxspeed", Value: "50"}}), 1e-9)
	require.InDelta(t, 48.28, parseMaxspeed(osm.Tags{{Key: "maxspeed", Value: "30 mph"}}), 0.01)
	require.Equal(t, 0.0, parseMaxspeed(osm.Tags{{Key: "maxspeed", Value: "none"}}))
	require.Equal(t, 0.0, parseMaxspeed(osm.Tags{}))
}

func TestIsOnewayTagged(t *testing.T) {
	oneway, reversed := isOnewayTagged(osm.Tags{{Key: "oneway", Value: "yes"}})
	require.True(t, oneway)
	require.False(t, reversed)

	oneway, reversed = isOnewayTagged(osm.Tags{{Key: "oneway", Value: "-1"}})
	require.True(t, oneway)
	require.True(t, reversed)

	// Roundabouts are implicitly oneway
	oneway, _ = isOnewayTagged(osm.Tags{{Key: "junction", Value: "roundabout"}})
	require.True(t, oneway)

	// Reversible roads flip by schedule; treated as bidirectional
	oneway, _ = isOnewayTagged(osm.Tags{{Key: "oneway", Value: "reversible"}})
	require.False(t, oneway)

	oneway, _ = isOnewayTagged(osm.Tags{})
	require.False(t, oneway)
}

func TestTagYes(t *testing.T) {
	require.True(t, tagYes(osm.Tags{{Key: "foot", Value: "yes"}}, "foot"))
	require.True(t, tagYes(osm.Tags{{Key: "foot", Value: "designated"}}, "foot"))
	require.False(t, tagYes(osm.Tags{{Key: "foot", Value: "no"}}, "foot"))
	require.False(t, tagYes(osm.Tags{}, "foot"))
}

func TestTagsMatchIgnoringUnimportant(t *testing.T) {
	a := osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "surface", Value: "asphalt"},
	}
	b := osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "surface", Value: "cobblestone"},
	}
	require.True(t, tagsMatchIgnoringUnimportant(a, b))

	c := osm.Tags{{Key: "highway", Value: "primary"}}
	require.False(t, tagsMatchIgnoringUnimportant(a, c))
}
