package streetgraph

import (
	"math"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	polyline "github.com/twpayne/go-polyline"
)

/* GeoJSON export. All output coordinates are WGS84. */

func ringToCoords(ring orb.Ring) [][][]float64 {
	wgs := ringToWGS84(ring)
	coords := make([][]float64, len(wgs))
	for i, pt := range wgs {
		coords[i] = []float64{pt[0], pt[1]}
	}
	return [][][]float64{coords}
}

func lineToCoords(line orb.LineString) [][]float64 {
	wgs := lineToWGS84(line)
	coords := make([][]float64, len(wgs))
	for i, pt := range wgs {
		coords[i] = []float64{pt[0], pt[1]}
	}
	return coords
}

// thickenLine builds the polygon of a band of the given width centered on the
// line.
func thickenLine(center orb.LineString, width float64) (orb.Ring, bool) {
	left, okL := shiftLine(center, -width/2)
	right, okR := shiftLine(center, width/2)
	if !okL || !okR {
		return nil, false
	}
	ring := orb.Ring{}
	ring = append(ring, left...)
	ring = append(ring, reverseLine(right)...)
	ring = append(ring, left[0])
	return ring, true
}

// encodeCenterLine compresses the WGS84 center line with the polyline
// algorithm for compact properties.
func encodeCenterLine(center orb.LineString) string {
	wgs := lineToWGS84(center)
	coords := make([][]float64, len(wgs))
	for i, pt := range wgs {
		coords[i] = []float64{pt[1], pt[0]}
	}
	return string(polyline.EncodeCoords(coords))
}

// ToGeoJSONPlain renders one polygon per road and per intersection, with
// classification properties. Requires computed geometry.
func (net *StreetNetwork) ToGeoJSONPlain() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		center, err := road.TrimmedCenterLine()
		if err != nil {
			return nil, errors.Wrapf(err, "road %d", id)
		}
		ring, ok := thickenLine(center, road.TotalWidth())
		if !ok {
			log.Warnw("can't thicken road for export", "road", id)
			continue
		}
		feature := geojson.NewPolygonFeature(ringToCoords(ring))
		feature.SetProperty("type", "road")
		feature.SetProperty("id", int(id))
		feature.SetProperty("highway", road.highway)
		feature.SetProperty("name", road.name)
		feature.SetProperty("layer", road.layer)
		feature.SetProperty("center_line", encodeCenterLine(center))
		feature.SetProperty("osm_way_ids", wayIDsProperty(road))
		fc.AddFeature(feature)
	}
	for _, id := range net.intersectionIDsSorted() {
		inter := net.intersections[id]
		polygon, err := inter.Polygon()
		if err != nil {
			return nil, errors.Wrapf(err, "intersection %d", id)
		}
		feature := geojson.NewPolygonFeature(ringToCoords(polygon))
		feature.SetProperty("type", "intersection")
		feature.SetProperty("id", int(id))
		feature.SetProperty("intersection_kind", inter.kind.String())
		feature.SetProperty("control", inter.control.String())
		fc.AddFeature(feature)
	}
	return fc, nil
}

// ToGeoJSONDetailed renders one polygon per lane, plus intersection polygons.
// Requires computed geometry.
func (net *StreetNetwork) ToGeoJSONDetailed() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		centers, err := road.laneCenterLines()
		if err != nil {
			return nil, errors.Wrapf(err, "road %d", id)
		}
		for idx, lane := range road.lanes {
			ring, ok := thickenLine(centers[idx], lane.Width)
			if !ok {
				continue
			}
			feature := geojson.NewPolygonFeature(ringToCoords(ring))
			feature.SetProperty("type", "lane_polygon")
			feature.SetProperty("road", int(id))
			feature.SetProperty("index", idx)
			feature.SetProperty("lane_type", lane.Type.String())
			feature.SetProperty("direction", lane.Direction.String())
			feature.SetProperty("width", lane.Width)
			feature.SetProperty("material", lane.surfaceMaterial())
			feature.SetProperty("osm_way_ids", wayIDsProperty(road))
			if lane.Type == LANE_BUFFER {
				feature.SetProperty("buffer", lane.Buffer.String())
			}
			fc.AddFeature(feature)
		}
	}
	for _, id := range net.intersectionIDsSorted() {
		inter := net.intersections[id]
		polygon, err := inter.Polygon()
		if err != nil {
			return nil, errors.Wrapf(err, "intersection %d", id)
		}
		feature := geojson.NewPolygonFeature(ringToCoords(polygon))
		feature.SetProperty("type", "intersection")
		feature.SetProperty("id", int(id))
		feature.SetProperty("intersection_kind", inter.kind.String())
		feature.SetProperty("control", inter.control.String())
		fc.AddFeature(feature)
	}
	return fc, nil
}

const (
	markingLineWidth = 0.25
	stopLineDepth    = 0.5
	stopLineSetback  = 1.0
)

// ToGeoJSONLaneMarkings renders painted separators between adjacent lanes and
// stop lines at controlled intersections, all as thin polygons.
func (net *StreetNetwork) ToGeoJSONLaneMarkings() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		center, err := road.TrimmedCenterLine()
		if err != nil {
			return nil, errors.Wrapf(err, "road %d", id)
		}
		totalWidth := road.TotalWidth()
		widthSoFar := 0.0
		for idx := 0; idx < len(road.lanes)-1; idx++ {
			widthSoFar += road.lanes[idx].Width
			left, right := road.lanes[idx], road.lanes[idx+1]
			marking := markingStyle(left, right)
			if marking == "none" {
				continue
			}
			edge, ok := shiftLine(center, widthSoFar-totalWidth/2)
			if !ok {
				continue
			}
			ring, ok := thickenLine(edge, markingLineWidth)
			if !ok {
				continue
			}
			feature := geojson.NewPolygonFeature(ringToCoords(ring))
			feature.SetProperty("type", "lane_marking")
			feature.SetProperty("road", int(id))
			feature.SetProperty("marking", marking)
			fc.AddFeature(feature)
		}
	}
	for _, id := range net.intersectionIDsSorted() {
		inter := net.intersections[id]
		if inter.control != CONTROL_SIGNAL && inter.control != CONTROL_STOP_SIGN {
			continue
		}
		for _, roadID := range inter.roads {
			road := net.roads[roadID]
			if !road.isDriveable() {
				continue
			}
			ring, ok := stopLineBand(road, id)
			if !ok {
				continue
			}
			feature := geojson.NewPolygonFeature(ringToCoords(ring))
			feature.SetProperty("type", "stop_line")
			feature.SetProperty("road", int(roadID))
			feature.SetProperty("intersection", int(id))
			feature.SetProperty("marking", "stop_line")
			fc.AddFeature(feature)
		}
	}
	return fc, nil
}

// stopLineBand builds the stop line polygon spanning the vehicle lanes heading
// into the intersection, just before the road's trimmed end.
func stopLineBand(road *Road, at IntersectionID) (orb.Ring, bool) {
	center, err := road.TrimmedCenterLine()
	if err != nil {
		return nil, false
	}
	incoming := LANE_FORWARD
	if road.targetIntersectionID != at {
		incoming = LANE_BACKWARD
	}
	// Lateral extent of the incoming vehicle lanes, left-to-right in the
	// road's forward orientation
	total := road.TotalWidth()
	left, right := 0.0, 0.0
	found := false
	widthSoFar := 0.0
	for _, lane := range road.lanes {
		lo := widthSoFar - total/2
		widthSoFar += lane.Width
		hi := widthSoFar - total/2
		if !lane.isForMovingVehicles() || lane.Direction != incoming {
			continue
		}
		if !found {
			left, right = lo, hi
			found = true
			continue
		}
		if lo < left {
			left = lo
		}
		if hi > right {
			right = hi
		}
	}
	if !found {
		return nil, false
	}
	oriented := center
	offset := (left + right) / 2
	if road.targetIntersectionID != at {
		oriented = reverseLine(center)
		offset = -offset
	}
	length := lineLength(oriented)
	band, ok := exactSlice(oriented, length-stopLineSetback-stopLineDepth, length-stopLineSetback)
	if !ok {
		return nil, false
	}
	shifted, ok := shiftLine(band, offset)
	if !ok {
		return nil, false
	}
	return thickenLine(shifted, right-left)
}

const (
	crosswalkDepth   = 2.0
	crosswalkSetback = 0.25
)

// ToGeoJSONIntersectionMarkings renders pedestrian crossings across the ends
// of roads with sidewalks, plus curb corner lines between clockwise-adjacent
// roads. Requires computed geometry.
func (net *StreetNetwork) ToGeoJSONIntersectionMarkings() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range net.intersectionIDsSorted() {
		inter := net.intersections[id]
		if _, err := inter.Polygon(); err != nil {
			return nil, errors.Wrapf(err, "intersection %d", id)
		}
		if inter.kind == KIND_INTERSECTION {
			for _, roadID := range inter.roads {
				road := net.roads[roadID]
				if !road.isDriveable() || !hasSidewalk(road) {
					continue
				}
				ring, ok := crosswalkBand(road, id)
				if !ok {
					continue
				}
				feature := geojson.NewPolygonFeature(ringToCoords(ring))
				feature.SetProperty("type", "crossing")
				feature.SetProperty("road", int(roadID))
				feature.SetProperty("intersection", int(id))
				feature.SetProperty("crossing", crossingStyle(road, inter))
				fc.AddFeature(feature)
			}
		}
		if len(inter.roads) < 2 {
			continue
		}
		for idx := range inter.roads {
			r1 := net.roads[inter.roads[idx]]
			r2 := net.roads[inter.roads[(idx+1)%len(inter.roads)]]
			if !hasSidewalk(r1) || !hasSidewalk(r2) {
				continue
			}
			// Walking clockwise from r1 to r2, the curb leaves r1 on its left
			// and meets r2 on its right.
			p1, ok1 := trimmedEdgeEnd(r1, id, -1)
			p2, ok2 := trimmedEdgeEnd(r2, id, 1)
			if !ok1 || !ok2 || math.Hypot(p2[0]-p1[0], p2[1]-p1[1]) < distEpsilon {
				continue
			}
			feature := geojson.NewLineStringFeature(lineToCoords(orb.LineString{p1, p2}))
			feature.SetProperty("type", "corner")
			feature.SetProperty("intersection", int(id))
			feature.SetProperty("roads", []int{int(r1.ID), int(r2.ID)})
			fc.AddFeature(feature)
		}
	}
	return fc, nil
}

// crosswalkBand builds the crossing polygon spanning the carriageway just
// before the road's trimmed end at the intersection.
func crosswalkBand(road *Road, at IntersectionID) (orb.Ring, bool) {
	center, err := road.TrimmedCenterLine()
	if err != nil {
		return nil, false
	}
	oriented := center
	if road.targetIntersectionID != at {
		oriented = reverseLine(center)
	}
	total := lineLength(oriented)
	band, ok := exactSlice(oriented, total-crosswalkSetback-crosswalkDepth, total-crosswalkSetback)
	if !ok {
		return nil, false
	}
	return thickenLine(band, crossableWidth(road))
}

// trimmedEdgeEnd returns the curb endpoint of the road's trimmed boundary at
// the given intersection; side is -1 for left and 1 for right when facing the
// intersection.
func trimmedEdgeEnd(road *Road, at IntersectionID, side float64) (orb.Point, bool) {
	center, err := road.TrimmedCenterLine()
	if err != nil {
		return orb.Point{}, false
	}
	oriented := center
	if road.targetIntersectionID != at {
		oriented = reverseLine(center)
	}
	edge, ok := shiftLine(oriented, side*road.halfWidth())
	if !ok || len(edge) == 0 {
		return orb.Point{}, false
	}
	return edge[len(edge)-1], true
}

func crossingStyle(road *Road, inter *Intersection) string {
	if tagged := road.tags.Find("crossing"); tagged != "" {
		return tagged
	}
	if inter.control == CONTROL_SIGNAL {
		return "marked"
	}
	return "unmarked"
}

func hasSidewalk(road *Road) bool {
	for _, lane := range road.lanes {
		if lane.Type == LANE_SIDEWALK || lane.Type == LANE_FOOTWAY {
			return true
		}
	}
	return false
}

// crossableWidth is the road width without its outer sidewalks.
func crossableWidth(road *Road) float64 {
	width := 0.0
	for _, lane := range road.lanes {
		if lane.Type == LANE_SIDEWALK || lane.Type == LANE_FOOTWAY {
			continue
		}
		width += lane.Width
	}
	return width
}

// markingStyle picks the paint between two adjacent lanes
func markingStyle(left, right Lane) string {
	if left.Type == LANE_BUFFER || right.Type == LANE_BUFFER {
		return "none"
	}
	if left.Type == LANE_SIDEWALK || right.Type == LANE_SIDEWALK ||
		left.Type == LANE_FOOTWAY || right.Type == LANE_FOOTWAY {
		return "curb"
	}
	if left.Direction != right.Direction {
		return "solid_double_yellow"
	}
	if left.Type != right.Type {
		return "solid_white"
	}
	return "dashed_white"
}

func wayIDsProperty(road *Road) []int64 {
	out := make([]int64, 0, len(road.osmWayIDs))
	for _, w := range road.osmWayIDs {
		out = append(out, int64(w))
	}
	return out
}
