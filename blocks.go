package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// BlockStep is one piece of a traced block boundary: an intersection or the
// road between two of them.
type BlockStep struct {
	Intersection IntersectionID
	Road         RoadID
	IsRoad       bool
}

// Block is a tight cycle of roads and intersections with the negative space
// inside as a polygon, in projected meters.
type Block struct {
	Steps   []BlockStep
	Polygon orb.Ring
}

// FindBlock traces the face of the planar road graph starting at the given
// intersection. Both rotation directions are walked; the shorter loop wins,
// since the longer one is the outside of the map. Requires computed geometry.
func (net *StreetNetwork) FindBlock(start IntersectionID) (*Block, error) {
	inter, err := net.Intersection(start)
	if err != nil {
		return nil, err
	}
	if len(inter.roads) == 0 {
		return nil, errors.Wrapf(ErrTopology, "intersection %d has no roads to trace from", start)
	}

	stepsCW, errCW := net.walkAround(start, true)
	stepsCCW, errCCW := net.walkAround(start, false)
	if errCW != nil && errCCW != nil {
		return nil, errCW
	}
	var steps []BlockStep
	clockwise := false
	switch {
	case errCW != nil:
		steps = stepsCCW
	case errCCW != nil:
		steps = stepsCW
		clockwise = true
	case len(stepsCW) < len(stepsCCW):
		steps = stepsCW
		clockwise = true
	default:
		steps = stepsCCW
	}

	shiftDir := 1.0
	if clockwise {
		shiftDir = -1.0
	}
	var pts []orb.Point
	for idx := 1; idx < len(steps); idx++ {
		prev, step := steps[idx-1], steps[idx]
		if !prev.IsRoad || step.IsRoad {
			continue
		}
		road := net.roads[prev.Road]
		center, err := road.TrimmedCenterLine()
		if err != nil {
			return nil, errors.Wrapf(err, "road %d in block", prev.Road)
		}
		if road.targetIntersectionID != step.Intersection {
			center = reverseLine(center)
		}
		edge, ok := shiftLine(center, shiftDir*road.halfWidth())
		if !ok {
			return nil, errors.Wrapf(ErrTopology, "can't offset road %d for block polygon", prev.Road)
		}
		pts = append(pts, edge...)
	}
	if len(pts) < 3 {
		return nil, errors.Wrap(ErrBlockNotClosed, "traced loop has no area")
	}
	pts = approxDedupe(pts, dedupeEpsilon)
	pts = closeOffPolygon(pts)
	return &Block{Steps: steps, Polygon: orb.Ring(pts)}, nil
}

// walkAround traces one face: cross each road, then leave on the next road in
// rotation at the far intersection. The step limit catches walks that leak
// out of a non-planar part of the graph (bridges, overlapping layers).
func (net *StreetNetwork) walkAround(start IntersectionID, clockwise bool) ([]BlockStep, error) {
	currentI := start
	currentR := net.intersections[start].roads[0]
	steps := []BlockStep{{Road: currentR, IsRoad: true}}

	for currentI != start || len(steps) < 2 {
		if len(steps) > net.limits.blockTraceLimit {
			return nil, errors.Wrapf(ErrBlockNotClosed, "gave up after %d steps", net.limits.blockTraceLimit)
		}
		nextI := net.intersections[net.roads[currentR].otherSide(currentI)]
		idx := -1
		for pos, r := range nextI.roads {
			if r == currentR {
				idx = pos
				break
			}
		}
		if idx < 0 {
			return nil, errors.Wrapf(ErrTopology, "road %d missing from intersection %d", currentR, nextI.ID)
		}
		var nextIdx int
		if clockwise {
			nextIdx = (idx + 1) % len(nextI.roads)
		} else {
			nextIdx = (idx - 1 + len(nextI.roads)) % len(nextI.roads)
		}
		nextR := nextI.roads[nextIdx]
		steps = append(steps,
			BlockStep{Intersection: nextI.ID},
			BlockStep{Road: nextR, IsRoad: true},
		)
		currentI = nextI.ID
		currentR = nextR
	}
	return steps, nil
}

// FindAllBlocks traces every distinct block in the network. Blocks are
// deduplicated by their road set.
func (net *StreetNetwork) FindAllBlocks() []*Block {
	seen := make(map[string]struct{})
	var blocks []*Block
	for _, i := range net.intersectionIDsSorted() {
		block, err := net.FindBlock(i)
		if err != nil {
			continue
		}
		key := blockKey(block)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		blocks = append(blocks, block)
	}
	return blocks
}

func blockKey(block *Block) string {
	roads := []RoadID{}
	for _, step := range block.Steps {
		if step.IsRoad {
			roads = append(roads, step.Road)
		}
	}
	// Canonical form: sorted road IDs
	for i := 1; i < len(roads); i++ {
		for j := i; j > 0 && roads[j] < roads[j-1]; j-- {
			roads[j], roads[j-1] = roads[j-1], roads[j]
		}
	}
	key := make([]byte, 0, len(roads)*4)
	for _, r := range roads {
		key = append(key, byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	}
	return string(key)
}
