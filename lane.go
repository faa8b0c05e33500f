package streetgraph

/* Lanes stuff */

type LaneType uint16

const (
	LANE_DRIVING = LaneType(iota + 1)
	LANE_PARKING
	LANE_SIDEWALK
	LANE_SHOULDER
	LANE_BIKING
	LANE_BUS
	LANE_SHARED_LEFT_TURN
	LANE_CONSTRUCTION
	LANE_LIGHT_RAIL
	LANE_BUFFER
	LANE_FOOTWAY
	LANE_SHARED_USE
)

func (iotaIdx LaneType) String() string {
	return [...]string{"driving", "parking", "sidewalk", "shoulder", "biking", "bus", "shared_left_turn", "construction", "light_rail", "buffer", "footway", "shared_use"}[iotaIdx-1]
}

type BufferType uint16

const (
	BUFFER_NONE = BufferType(iota)
	BUFFER_STRIPES
	BUFFER_FLEX_POSTS
	BUFFER_PLANTERS
	BUFFER_JERSEY_BARRIER
	BUFFER_CURB
)

func (iotaIdx BufferType) String() string {
	return [...]string{"none", "stripes", "flex_posts", "planters", "jersey_barrier", "curb"}[iotaIdx]
}

type LaneDirection uint16

const (
	LANE_FORWARD = LaneDirection(iota + 1)
	LANE_BACKWARD
)

func (iotaIdx LaneDirection) String() string {
	return [...]string{"forward", "backward"}[iotaIdx-1]
}

func (dir LaneDirection) Opposite() LaneDirection {
	if dir == LANE_FORWARD {
		return LANE_BACKWARD
	}
	return LANE_FORWARD
}

const (
	normalLaneWidth      = 2.5
	serviceRoadLaneWidth = 1.5
	sidewalkWidth        = 1.5
	shoulderWidth        = 0.5
	bikeLaneWidth        = 1.5
	parkingLaneWidth     = 2.0
	bufferLaneWidth      = 0.5
	curbBufferWidth      = 0.25
	lightRailWidth       = 2.5
)

// Lane is a single cross-section element of a Road, left to right. Sidewalks
// and shared turn lanes are forced to a single direction; bidirectional lanes
// are not modeled (known limitation of the lane model).
type Lane struct {
	Type         LaneType
	Buffer       BufferType
	Direction    LaneDirection
	Width        float64
	SpeedLimit   float64
	AllowedTurns []string
}

func typicalLaneWidth(lt LaneType, buffer BufferType) float64 {
	switch lt {
	case LANE_DRIVING, LANE_BUS, LANE_SHARED_LEFT_TURN, LANE_CONSTRUCTION:
		return normalLaneWidth
	case LANE_PARKING:
		return parkingLaneWidth
	case LANE_SIDEWALK, LANE_FOOTWAY, LANE_SHARED_USE:
		return sidewalkWidth
	case LANE_SHOULDER:
		return shoulderWidth
	case LANE_BIKING:
		return bikeLaneWidth
	case LANE_LIGHT_RAIL:
		return lightRailWidth
	case LANE_BUFFER:
		if buffer == BUFFER_CURB {
			return curbBufferWidth
		}
		return bufferLaneWidth
	}
	return normalLaneWidth
}

func newLane(lt LaneType, dir LaneDirection) Lane {
	return Lane{
		Type:      lt,
		Direction: dir,
		Width:     typicalLaneWidth(lt, BUFFER_NONE),
	}
}

func newBufferLane(buffer BufferType, dir LaneDirection) Lane {
	return Lane{
		Type:      LANE_BUFFER,
		Buffer:    buffer,
		Direction: dir,
		Width:     typicalLaneWidth(LANE_BUFFER, buffer),
	}
}

func (lane Lane) isWalkable() bool {
	switch lane.Type {
	case LANE_SIDEWALK, LANE_SHOULDER, LANE_FOOTWAY, LANE_SHARED_USE:
		return true
	}
	return false
}

func (lane Lane) isForMovingVehicles() bool {
	switch lane.Type {
	case LANE_DRIVING, LANE_BIKING, LANE_BUS, LANE_LIGHT_RAIL, LANE_SHARED_USE:
		return true
	}
	return false
}

// onewayForDriving returns the single direction of all driving lanes, or false
// when there are none or they point both ways.
func onewayForDriving(lanes []Lane) (LaneDirection, bool) {
	fwd := false
	back := false
	for _, lane := range lanes {
		if lane.Type != LANE_DRIVING {
			continue
		}
		if lane.Direction == LANE_FORWARD {
			fwd = true
		} else {
			back = true
		}
	}
	if fwd && !back {
		return LANE_FORWARD, true
	}
	if back && !fwd {
		return LANE_BACKWARD, true
	}
	return 0, false
}

func lanesEqual(a, b []Lane) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Direction != b[i].Direction || a[i].Buffer != b[i].Buffer {
			return false
		}
		if a[i].Width != b[i].Width {
			return false
		}
	}
	return true
}

// surfaceMaterial maps a lane type to the material used for rendering its
// polygon in exports.
func (lane Lane) surfaceMaterial() string {
	switch lane.Type {
	case LANE_SIDEWALK, LANE_FOOTWAY:
		return "concrete"
	case LANE_BIKING, LANE_SHARED_USE:
		return "fine_asphalt"
	case LANE_LIGHT_RAIL:
		return "rail"
	}
	return "asphalt"
}
