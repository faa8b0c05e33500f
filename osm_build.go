package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// NewFromOSMFile reads an .osm/.xml/.pbf extract and builds the initial
// network: ways split into roads at shared nodes, lanes derived from tags,
// turn restrictions attached. No geometry is generated and no simplification
// runs; callers chain ApplyTransformations and GenerateIntersectionGeometry.
func NewFromOSMFile(filename string, options Options) (*StreetNetwork, error) {
	data, err := readOSM(filename, options.Verbose)
	if err != nil {
		return nil, errors.Wrap(err, "can't read OSM data")
	}
	return buildNetwork(data, options)
}

func buildNetwork(data *rawOSMData, options Options) (*StreetNetwork, error) {
	net := NewStreetNetwork(options)
	var boundary orb.Ring
	if len(options.ClipBoundary) > 2 {
		boundary = make(orb.Ring, len(options.ClipBoundary))
		for i, pt := range options.ClipBoundary {
			boundary[i] = pointToEuclidean(pt)
		}
		net.boundary = boundary
	}

	// Ways referencing nodes outside the extract can't be reconstructed
	kept := make([]*importWay, 0, len(data.ways))
	for _, way := range data.ways {
		complete := len(way.nodes) >= 2
		for _, n := range way.nodes {
			if _, ok := data.nodes[n]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			log.Warnw("dropping way with missing nodes", "way", way.id)
			continue
		}
		kept = append(kept, way)
	}

	// A node becomes an intersection when two ways meet there or a way ends
	for _, way := range kept {
		for idx, n := range way.nodes {
			if idx == 0 || idx == len(way.nodes)-1 {
				data.nodes[n].useCount += 2
			} else {
				data.nodes[n].useCount++
			}
		}
	}

	intersectionPerNode := make(map[osm.NodeID]IntersectionID)
	getIntersection := func(nodeID osm.NodeID) IntersectionID {
		if id, ok := intersectionPerNode[nodeID]; ok {
			return id
		}
		node := data.nodes[nodeID]
		inter := net.AddIntersection(pointToEuclidean(node.point), node.control)
		inter.osmNodeIDs = append(inter.osmNodeIDs, nodeID)
		intersectionPerNode[nodeID] = inter.ID
		return inter.ID
	}

	wayToRoads := make(map[osm.WayID][]RoadID)
	for _, way := range kept {
		nodes := way.nodes
		if way.reversed {
			flipped := make([]osm.NodeID, len(nodes))
			for i, n := range nodes {
				flipped[len(nodes)-1-i] = n
			}
			nodes = flipped
		}
		lanes := lanesFromTags(way.tags, options)
		if len(lanes) == 0 {
			continue
		}
		for _, segment := range splitWay(nodes, data.nodes) {
			for _, run := range clipSegment(segment, data.nodes, boundary) {
				road, err := net.addImportedRoad(run, way, lanes, data.nodes, getIntersection)
				if err != nil {
					log.Warnw("skipping degenerate segment", "way", way.id, "error", err)
					continue
				}
				wayToRoads[way.id] = append(wayToRoads[way.id], road.ID)
			}
		}
	}

	applyRestrictions(net, data.restrictions, wayToRoads)

	if options.Verbose {
		log.Infow("built street network", "roads", net.RoadsNum(), "intersections", net.IntersectionsNum())
	}
	return net, nil
}

// splitWay cuts the node list at every interior intersection node. Loop
// segments (same node at both ends) are split in half so roads keep distinct
// endpoints.
func splitWay(nodes []osm.NodeID, nodeData map[osm.NodeID]*importNode) [][]osm.NodeID {
	var segments [][]osm.NodeID
	current := []osm.NodeID{nodes[0]}
	for _, n := range nodes[1:] {
		current = append(current, n)
		if nodeData[n].useCount >= 2 {
			segments = append(segments, current)
			current = []osm.NodeID{n}
		}
	}
	if len(current) >= 2 {
		segments = append(segments, current)
	}

	var out [][]osm.NodeID
	for _, segment := range segments {
		if segment[0] != segment[len(segment)-1] {
			out = append(out, segment)
			continue
		}
		if len(segment) < 3 {
			continue
		}
		mid := len(segment) / 2
		out = append(out, segment[:mid+1], segment[mid:])
	}
	return out
}

// clippedRun is one piece of a segment surviving the boundary clip. Synthetic
// endpoints replace node IDs where the road was cut.
type clippedRun struct {
	nodes       []osm.NodeID
	cutStart    orb.Point
	cutEnd      orb.Point
	hasCutStart bool
	hasCutEnd   bool
}

// clipSegment drops the parts of a segment outside the boundary, remembering
// where it crossed. Without a boundary the segment passes through untouched.
func clipSegment(segment []osm.NodeID, nodeData map[osm.NodeID]*importNode, boundary orb.Ring) []clippedRun {
	if len(boundary) == 0 {
		return []clippedRun{{nodes: segment}}
	}
	inside := func(n osm.NodeID) bool {
		return planar.RingContains(boundary, pointToEuclidean(nodeData[n].point))
	}
	crossing := func(a, b osm.NodeID) (orb.Point, bool) {
		pa := pointToEuclidean(nodeData[a].point)
		pb := pointToEuclidean(nodeData[b].point)
		for i := 1; i < len(boundary); i++ {
			if hit, ok := segmentsIntersection(pa, pb, boundary[i-1], boundary[i]); ok {
				return hit, true
			}
		}
		return orb.Point{}, false
	}

	var runs []clippedRun
	var current *clippedRun
	for idx, n := range segment {
		if inside(n) {
			if current == nil {
				current = &clippedRun{}
				if idx > 0 {
					if hit, ok := crossing(segment[idx-1], n); ok {
						current.cutStart = hit
						current.hasCutStart = true
					}
				}
			}
			current.nodes = append(current.nodes, n)
			continue
		}
		if current != nil {
			if hit, ok := crossing(segment[idx-1], n); ok {
				current.cutEnd = hit
				current.hasCutEnd = true
			}
			runs = append(runs, *current)
			current = nil
		}
	}
	if current != nil {
		runs = append(runs, *current)
	}
	return runs
}

// addImportedRoad turns one clipped run into a road, minting synthetic
// map-edge intersections for cut endpoints.
func (net *StreetNetwork) addImportedRoad(run clippedRun, way *importWay, lanes []Lane, nodeData map[osm.NodeID]*importNode, getIntersection func(osm.NodeID) IntersectionID) (*Road, error) {
	geom := orb.LineString{}
	if run.hasCutStart {
		geom = append(geom, run.cutStart)
	}
	for _, n := range run.nodes {
		geom = append(geom, pointToEuclidean(nodeData[n].point))
	}
	if run.hasCutEnd {
		geom = append(geom, run.cutEnd)
	}
	if len(geom) < 2 {
		return nil, errors.Wrap(ErrTopology, "clipped run has no geometry left")
	}

	var source, target IntersectionID
	if run.hasCutStart {
		inter := net.AddIntersection(geom[0], CONTROL_UNCONTROLLED)
		inter.mapEdge = true
		source = inter.ID
	} else {
		source = getIntersection(run.nodes[0])
	}
	if run.hasCutEnd {
		inter := net.AddIntersection(geom[len(geom)-1], CONTROL_UNCONTROLLED)
		inter.mapEdge = true
		target = inter.ID
	} else {
		target = getIntersection(run.nodes[len(run.nodes)-1])
	}

	clonedLanes := make([]Lane, len(lanes))
	copy(clonedLanes, lanes)
	road, err := net.AddRoad(source, target, geom, clonedLanes, way.tags)
	if err != nil {
		return nil, err
	}
	road.osmWayIDs = append(road.osmWayIDs, way.id)
	road.layer = parseLayer(way.tags)
	if way.tags.Find("junction") == "intersection" {
		road.internalJunctionRoad = true
	}
	return road, nil
}

// applyRestrictions attaches relation-based turn restrictions to the roads
// that came out of the from-way. Restrictions whose members didn't survive the
// import are dropped.
func applyRestrictions(net *StreetNetwork, restrictions []importRestriction, wayToRoads map[osm.WayID][]RoadID) {
	roadAt := func(wayID osm.WayID, i IntersectionID) (RoadID, bool) {
		for _, r := range wayToRoads[wayID] {
			if road, err := net.Road(r); err == nil && road.touches(i) {
				return r, true
			}
		}
		return 0, false
	}
	sharedIntersection := func(a, b RoadID) (IntersectionID, bool) {
		roadA, errA := net.Road(a)
		roadB, errB := net.Road(b)
		if errA != nil || errB != nil {
			return 0, false
		}
		for _, i := range roadA.endpoints() {
			if roadB.touches(i) {
				return i, true
			}
		}
		return 0, false
	}

	dropped := 0
	for _, restriction := range restrictions {
		if !restriction.hasViaWay {
			via, ok := findIntersectionForNode(net, restriction.viaNode)
			if !ok {
				dropped++
				continue
			}
			from, okFrom := roadAt(restriction.fromWay, via)
			to, okTo := roadAt(restriction.toWay, via)
			if !okFrom || !okTo {
				dropped++
				continue
			}
			road, _ := net.Road(from)
			road.turnRestrictions = append(road.turnRestrictions, TurnRestriction{
				Type: restriction.restrictionType,
				To:   to,
			})
			continue
		}

		viaRoads := wayToRoads[restriction.viaWay]
		if len(viaRoads) == 0 {
			dropped++
			continue
		}
		via := viaRoads[0]
		resolved := false
		for _, from := range wayToRoads[restriction.fromWay] {
			if _, ok := sharedIntersection(from, via); !ok {
				continue
			}
			for _, to := range wayToRoads[restriction.toWay] {
				if _, ok := sharedIntersection(via, to); !ok {
					continue
				}
				road, _ := net.Road(from)
				road.viaRestrictions = append(road.viaRestrictions, ViaRestriction{Via: via, To: to})
				resolved = true
				break
			}
			if resolved {
				break
			}
		}
		if !resolved {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warnw("dropped restrictions with missing members", "count", dropped)
	}
}

func findIntersectionForNode(net *StreetNetwork, nodeID osm.NodeID) (IntersectionID, bool) {
	for _, id := range net.intersectionIDsSorted() {
		for _, n := range net.intersections[id].osmNodeIDs {
			if n == nodeID {
				return id, true
			}
		}
	}
	return 0, false
}
