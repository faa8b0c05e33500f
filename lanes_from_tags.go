package streetgraph

import (
	"strings"

	"github.com/paulmach/osm"
)

// lanesFromTags derives the full cross section of a way, ordered left to right
// along the way's direction. Only tagging schemes that survive into the final
// network are interpreted; exotic ones degrade to sane defaults rather than
// failing the import.
func lanesFromTags(tags osm.Tags, options Options) []Lane {
	highway := tags.Find("highway")
	railway := tags.Find("railway")

	if _, lightRail := lightRailRailwayTags[railway]; lightRail && highway == "" {
		return lightRailLanes(tags)
	}
	if highway == "cycleway" {
		return cyclewayLanes(tags)
	}
	if _, footway := footwayHighwayTags[highway]; footway {
		return footwayLanes(tags)
	}
	if highway == "construction" {
		return []Lane{newLane(LANE_CONSTRUCTION, LANE_FORWARD)}
	}
	return drivingLanes(tags, highway, options)
}

func lightRailLanes(tags osm.Tags) []Lane {
	tracks, ok := parseIntTag(tags, "tracks")
	if !ok || tracks < 1 {
		tracks = 1
	}
	lanes := make([]Lane, 0, tracks)
	for i := 0; i < tracks; i++ {
		dir := LANE_FORWARD
		if tracks > 1 && i < tracks/2 {
			dir = LANE_BACKWARD
		}
		lanes = append(lanes, newLane(LANE_LIGHT_RAIL, dir))
	}
	return lanes
}

func cyclewayLanes(tags osm.Tags) []Lane {
	// foot access on a cycleway makes it shared use
	laneType := LANE_BIKING
	if tagYes(tags, "foot") || tags.Find("segregated") == "no" {
		laneType = LANE_SHARED_USE
	}
	oneway, _ := isOnewayTagged(tags)
	if oneway {
		return []Lane{newLane(laneType, LANE_FORWARD)}
	}
	return []Lane{
		newLane(laneType, LANE_BACKWARD),
		newLane(laneType, LANE_FORWARD),
	}
}

func footwayLanes(tags osm.Tags) []Lane {
	laneType := LANE_FOOTWAY
	if tagYes(tags, "bicycle") {
		laneType = LANE_SHARED_USE
	}
	if tags.Find("footway") == "sidewalk" {
		laneType = LANE_SIDEWALK
	}
	return []Lane{newLane(laneType, LANE_FORWARD)}
}

func drivingLanes(tags osm.Tags, highway string, options Options) []Lane {
	oneway, _ := isOnewayTagged(tags)

	totalLanes := defaultLanesPerHighway[highway]
	if totalLanes == 0 {
		totalLanes = 2
	}
	if oneway && totalLanes == 2 {
		totalLanes = 1
	}
	if tagged, ok := parseIntTag(tags, "lanes"); ok && tagged > 0 {
		totalLanes = tagged
	}

	fwd := totalLanes
	back := 0
	if !oneway {
		fwd = (totalLanes + 1) / 2
		back = totalLanes - fwd
		if back == 0 && totalLanes > 0 {
			// lanes=1 on a two-way street: single lane shared in practice,
			// modeled as one lane per direction
			back = 1
		}
	}
	if tagged, ok := parseIntTag(tags, "lanes:forward"); ok {
		fwd = tagged
		if !oneway {
			if taggedBack, okBack := parseIntTag(tags, "lanes:backward"); okBack {
				back = taggedBack
			} else {
				back = totalLanes - fwd
			}
		}
	} else if tagged, ok := parseIntTag(tags, "lanes:backward"); ok && !oneway {
		back = tagged
		fwd = totalLanes - back
	}
	if fwd < 1 {
		fwd = 1
	}
	if back < 0 {
		back = 0
	}

	speed := parseMaxspeed(tags)
	laneWidth := normalLaneWidth
	if highway == "service" || highway == "living_street" {
		laneWidth = serviceRoadLaneWidth
	}
	mkDriving := func(dir LaneDirection) Lane {
		lane := newLane(LANE_DRIVING, dir)
		lane.Width = laneWidth
		lane.SpeedLimit = speed
		return lane
	}

	fwdSide := []Lane{}
	backSide := []Lane{}
	for i := 0; i < fwd; i++ {
		fwdSide = append(fwdSide, mkDriving(LANE_FORWARD))
	}
	for i := 0; i < back; i++ {
		backSide = append(backSide, mkDriving(LANE_BACKWARD))
	}

	applyBusLanes(tags, fwdSide, backSide)
	applyTurnLanes(tags, fwdSide, backSide)

	// Bike lanes go at the curb side of each direction
	fwdSide, backSide = applyCycleways(tags, fwdSide, backSide, oneway)

	// A shared center turn lane sits between the directions
	sharedCenter := false
	if both, ok := parseIntTag(tags, "lanes:both_ways"); ok && both > 0 {
		sharedCenter = true
	}
	if strings.Contains(tags.Find("turn:lanes:both_ways"), "left") || tagYes(tags, "centre_turn_lane") {
		sharedCenter = true
	}

	fwdSide, backSide = applyParking(tags, fwdSide, backSide)
	fwdSide, backSide = applyShoulders(tags, highway, fwdSide, backSide)
	fwdSide, backSide = applySidewalks(tags, highway, options, oneway, fwdSide, backSide)

	// Assemble left to right: for right-hand traffic the oncoming side comes
	// first, mirrored for left-hand traffic.
	out := make([]Lane, 0, len(fwdSide)+len(backSide)+1)
	if options.DrivingSide == DRIVING_SIDE_RIGHT {
		for i := len(backSide) - 1; i >= 0; i-- {
			out = append(out, backSide[i])
		}
		if sharedCenter {
			out = append(out, newLane(LANE_SHARED_LEFT_TURN, LANE_FORWARD))
		}
		out = append(out, fwdSide...)
	} else {
		for i := len(fwdSide) - 1; i >= 0; i-- {
			out = append(out, fwdSide[i])
		}
		if sharedCenter {
			out = append(out, newLane(LANE_SHARED_LEFT_TURN, LANE_FORWARD))
		}
		out = append(out, backSide...)
	}
	return out
}

// applyBusLanes converts the curb-most driving lane per direction when busway
// tagging says so. fwdSide/backSide run center to curb.
func applyBusLanes(tags osm.Tags, fwdSide, backSide []Lane) {
	busway := tags.Find("busway")
	both := busway == "lane" || busway == "opposite_lane" || tags.Find("busway:both") == "lane"
	fwdBus := both || tags.Find("busway:right") == "lane"
	backBus := both || tags.Find("busway:left") == "lane"
	if fwdBus && len(fwdSide) > 0 {
		fwdSide[len(fwdSide)-1].Type = LANE_BUS
	}
	if backBus && len(backSide) > 0 {
		backSide[len(backSide)-1].Type = LANE_BUS
	}
}

// applyTurnLanes attaches turn:lanes values to the forward driving lanes,
// center to curb. Values are kept verbatim ("left", "through;right", ...).
func applyTurnLanes(tags osm.Tags, fwdSide, backSide []Lane) {
	assign := func(value string, side []Lane) {
		if value == "" {
			return
		}
		parts := strings.Split(value, "|")
		if len(parts) != len(side) {
			return
		}
		for i, part := range parts {
			if part == "" {
				continue
			}
			side[i].AllowedTurns = strings.Split(part, ";")
		}
	}
	assign(tags.Find("turn:lanes"), fwdSide)
	assign(tags.Find("turn:lanes:forward"), fwdSide)
	assign(tags.Find("turn:lanes:backward"), backSide)
}

func applyCycleways(tags osm.Tags, fwdSide, backSide []Lane, oneway bool) ([]Lane, []Lane) {
	isBikeValue := func(value string) bool {
		switch value {
		case "lane", "track", "opposite_lane", "opposite_track":
			return true
		}
		return false
	}
	plain := tags.Find("cycleway")
	fwdBike := isBikeValue(plain) || isBikeValue(tags.Find("cycleway:right")) || isBikeValue(tags.Find("cycleway:both"))
	backBike := (!oneway && isBikeValue(plain)) || isBikeValue(tags.Find("cycleway:left")) || isBikeValue(tags.Find("cycleway:both"))
	// Contraflow bike lane on a oneway street
	contraflow := oneway && (plain == "opposite_lane" || plain == "opposite_track" ||
		tags.Find("cycleway:left") == "opposite_lane")

	if fwdBike {
		bike := newLane(LANE_BIKING, LANE_FORWARD)
		if tagYes(tags, "cycleway:right:buffer") || tags.Find("cycleway:right") == "track" {
			bike.Buffer = BUFFER_STRIPES
		}
		fwdSide = append(fwdSide, bike)
	}
	if backBike {
		backSide = append(backSide, newLane(LANE_BIKING, LANE_BACKWARD))
	}
	if contraflow {
		backSide = append(backSide, newLane(LANE_BIKING, LANE_BACKWARD))
	}
	return fwdSide, backSide
}

func applyParking(tags osm.Tags, fwdSide, backSide []Lane) ([]Lane, []Lane) {
	isParkingValue := func(value string) bool {
		switch value {
		case "parallel", "diagonal", "perpendicular", "lane", "street_side", "yes":
			return true
		}
		return false
	}
	both := isParkingValue(tags.Find("parking:both")) || isParkingValue(tags.Find("parking:lane:both"))
	if both || isParkingValue(tags.Find("parking:right")) || isParkingValue(tags.Find("parking:lane:right")) {
		fwdSide = append(fwdSide, newLane(LANE_PARKING, LANE_FORWARD))
	}
	if both || isParkingValue(tags.Find("parking:left")) || isParkingValue(tags.Find("parking:lane:left")) {
		backSide = append(backSide, newLane(LANE_PARKING, LANE_BACKWARD))
	}
	return fwdSide, backSide
}

func applyShoulders(tags osm.Tags, highway string, fwdSide, backSide []Lane) ([]Lane, []Lane) {
	shoulder := tags.Find("shoulder")
	fwdShoulder := shoulder == "both" || shoulder == "right" || shoulder == "yes"
	backShoulder := shoulder == "both" || shoulder == "left"
	// Motorways get shoulders unless explicitly mapped away
	if (highway == "motorway" || highway == "trunk") && shoulder == "" {
		fwdShoulder = true
		backShoulder = len(backSide) > 0
	}
	if fwdShoulder {
		fwdSide = append(fwdSide, newLane(LANE_SHOULDER, LANE_FORWARD))
	}
	if backShoulder {
		backSide = append(backSide, newLane(LANE_SHOULDER, LANE_BACKWARD))
	}
	return fwdSide, backSide
}

// applySidewalks appends sidewalks at the outermost position per side,
// inferring untagged ones when the import is configured for it.
func applySidewalks(tags osm.Tags, highway string, options Options, oneway bool, fwdSide, backSide []Lane) ([]Lane, []Lane) {
	sidewalk := tags.Find("sidewalk")
	if sidewalk == "" {
		left := tags.Find("sidewalk:left")
		right := tags.Find("sidewalk:right")
		if left != "" || right != "" {
			switch {
			case right != "no" && left != "no":
				sidewalk = "both"
			case right != "no":
				sidewalk = "right"
			case left != "no":
				sidewalk = "left"
			default:
				sidewalk = "no"
			}
		}
	}
	if sidewalk == "" && options.InferSidewalks {
		sidewalk = inferSidewalk(tags, highway, options, oneway)
	}

	if sidewalk == "both" || sidewalk == "right" || sidewalk == "yes" {
		fwdSide = append(fwdSide, newLane(LANE_SIDEWALK, LANE_FORWARD))
	}
	if sidewalk == "both" || sidewalk == "left" {
		backSide = append(backSide, newLane(LANE_SIDEWALK, LANE_BACKWARD))
	}
	return fwdSide, backSide
}

func inferSidewalk(tags osm.Tags, highway string, options Options, oneway bool) string {
	switch highway {
	case "motorway", "motorway_link", "service", "cycleway", "track":
		return "no"
	}
	if _, roundabout := junctionTypes[tags.Find("junction")]; roundabout {
		return "no"
	}
	if tags.Find("foot") == "no" {
		return "no"
	}
	if oneway {
		if highway == "residential" || highway == "living_street" {
			if tags.Find("dual_carriageway") != "yes" {
				return "both"
			}
		}
		if options.DrivingSide == DRIVING_SIDE_RIGHT {
			return "right"
		}
		return "left"
	}
	return "both"
}
