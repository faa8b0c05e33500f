package streetgraph

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

var (
	// Highway values that never become roads
	negligibleHighwayTags = map[string]struct{}{
		"construction": {},
		"proposed":     {},
		"raceway":      {},
		"bridleway":    {},
		"rest_area":    {},
		"su":           {},
		"road":         {},
		"abandoned":    {},
		"planned":      {},
		"trailhead":    {},
		"stairs":       {},
		"dismantled":   {},
		"disused":      {},
		"razed":        {},
		"access":       {},
		"stop":         {},
		"elevator":     {},
		"escalator":    {},
		"platform":     {},
		"bus_stop":     {},
	}

	// Highway values mapped to pedestrian-only geometry
	footwayHighwayTags = map[string]struct{}{
		"footway":    {},
		"path":       {},
		"pedestrian": {},
		"steps":      {},
		"corridor":   {},
		"track":      {},
	}

	// Railway values kept as light rail roads
	lightRailRailwayTags = map[string]struct{}{
		"light_rail": {},
		"tram":       {},
	}

	// See ref.: https://wiki.openstreetmap.org/wiki/Tag:oneway%3Dreversible
	onewayReversible = map[string]struct{}{
		"reversible":  {},
		"alternating": {},
	}

	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}

	// Total lanes assumed when the way carries no lanes tag
	defaultLanesPerHighway = map[string]int{
		"motorway":       4,
		"motorway_link":  1,
		"trunk":          4,
		"trunk_link":     1,
		"primary":        2,
		"primary_link":   1,
		"secondary":      2,
		"secondary_link": 1,
		"tertiary":       2,
		"tertiary_link":  1,
		"residential":    2,
		"living_street":  2,
		"unclassified":   2,
		"service":        1,
	}
)

func tagYes(tags osm.Tags, key string) bool {
	switch tags.Find(key) {
	case "yes", "designated", "true", "1":
		return true
	}
	return false
}

func parseIntTag(tags osm.Tags, key string) (int, bool) {
	value := tags.Find(key)
	if value == "" {
		return 0, false
	}
	// "lanes=3;4" and similar garbage: take the first number
	if idx := strings.IndexAny(value, ";,"); idx >= 0 {
		value = value[:idx]
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}

func parseLayer(tags osm.Tags) int {
	layer, ok := parseIntSigned(tags.Find("layer"))
	if !ok {
		return 0
	}
	return layer
}

func parseIntSigned(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// parseMaxspeed returns km/h; supports "50", "30 mph" and "none"
func parseMaxspeed(tags osm.Tags) float64 {
	value := strings.TrimSpace(tags.Find("maxspeed"))
	if value == "" || value == "none" || value == "signals" {
		return 0
	}
	mph := false
	if strings.HasSuffix(value, "mph") {
		mph = true
		value = strings.TrimSpace(strings.TrimSuffix(value, "mph"))
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if mph {
		parsed *= 1.609344
	}
	return parsed
}

// isOnewayTagged interprets oneway and roundabout tagging; the second result
// is true for oneway=-1 (geometry runs against traffic).
func isOnewayTagged(tags osm.Tags) (oneway bool, reversed bool) {
	value := tags.Find("oneway")
	if _, isReversible := onewayReversible[value]; isReversible {
		// Reversible roads flip by schedule; treat as bidirectional
		return false, false
	}
	switch value {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return true, true
	case "no", "false", "0":
		return false, false
	}
	if _, roundabout := junctionTypes[tags.Find("junction")]; roundabout {
		return true, false
	}
	return false, false
}

// isAreaTagged filters closed ways mapped as plazas or parking lots
func isAreaTagged(tags osm.Tags) bool {
	return tags.Find("area") == "yes"
}
