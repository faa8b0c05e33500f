package streetgraph

import (
	"time"

	"github.com/paulmach/orb/encoding/wkt"
)

type Transformation uint16

const (
	TRANSFORM_TRIM_DEADEND_CYCLEWAYS = Transformation(iota + 1)
	TRANSFORM_SNAP_CYCLEWAYS
	TRANSFORM_REMOVE_DISCONNECTED_ROADS
	TRANSFORM_COLLAPSE_SAUSAGE_LINKS
	TRANSFORM_ZIP_SIDEPATHS
	TRANSFORM_MERGE_DUAL_CARRIAGEWAYS
	TRANSFORM_FIND_SHORT_ROADS
	TRANSFORM_COLLAPSE_SHORT_ROADS
	TRANSFORM_COLLAPSE_DEGENERATE_INTERSECTIONS
	TRANSFORM_CLASSIFY_INTERSECTIONS
)

func (iotaIdx Transformation) String() string {
	return [...]string{
		"trim_deadend_cycleways",
		"snap_cycleways",
		"remove_disconnected_roads",
		"collapse_sausage_links",
		"zip_sidepaths",
		"merge_dual_carriageways",
		"find_short_roads",
		"collapse_short_roads",
		"collapse_degenerate_intersections",
		"classify_intersections",
	}[iotaIdx-1]
}

// StandardTransformations is the default simplification pipeline. Order
// matters: short roads must be found before they're collapsed, and
// classification runs last so kinds reflect the final topology.
func StandardTransformations(options Options) []Transformation {
	out := []Transformation{}
	if options.SnapCycleways {
		out = append(out, TRANSFORM_SNAP_CYCLEWAYS)
	}
	out = append(out,
		TRANSFORM_TRIM_DEADEND_CYCLEWAYS,
		TRANSFORM_REMOVE_DISCONNECTED_ROADS,
		TRANSFORM_COLLAPSE_SAUSAGE_LINKS,
		TRANSFORM_ZIP_SIDEPATHS,
	)
	if options.MergeDualCarriageways {
		out = append(out, TRANSFORM_MERGE_DUAL_CARRIAGEWAYS)
	}
	out = append(out,
		// Dog-leg detection needs up-to-date kinds
		TRANSFORM_CLASSIFY_INTERSECTIONS,
		TRANSFORM_FIND_SHORT_ROADS,
		TRANSFORM_COLLAPSE_SHORT_ROADS,
		TRANSFORM_COLLAPSE_DEGENERATE_INTERSECTIONS,
		TRANSFORM_CLASSIFY_INTERSECTIONS,
	)
	return out
}

// DebugStep is a lightweight snapshot of the network taken before one
// transformation ran. Geometries are WKT in projected meters.
type DebugStep struct {
	Label              string
	RoadCenters        map[RoadID]string
	IntersectionPoints map[IntersectionID]string
}

func (net *StreetNetwork) DebugSteps() []*DebugStep {
	return net.debugSteps
}

func (net *StreetNetwork) snapshotDebugStep(label string) {
	step := &DebugStep{
		Label:              label,
		RoadCenters:        make(map[RoadID]string, len(net.roads)),
		IntersectionPoints: make(map[IntersectionID]string, len(net.intersections)),
	}
	for id, road := range net.roads {
		step.RoadCenters[id] = wkt.MarshalString(road.geomEuclidean)
	}
	for id, inter := range net.intersections {
		step.IntersectionPoints[id] = wkt.MarshalString(inter.point)
	}
	net.debugSteps = append(net.debugSteps, step)
}

// ApplyTransformations runs the passes in order. Every pass leaves the
// network valid; derived geometry stays stale until
// GenerateIntersectionGeometry runs.
func (net *StreetNetwork) ApplyTransformations(transformations []Transformation) {
	for _, transformation := range transformations {
		if net.options.DebugEachStep {
			net.snapshotDebugStep(transformation.String())
		}
		st := time.Now()
		switch transformation {
		case TRANSFORM_TRIM_DEADEND_CYCLEWAYS:
			net.trimDeadendCycleways()
		case TRANSFORM_SNAP_CYCLEWAYS:
			net.snapCycleways()
		case TRANSFORM_REMOVE_DISCONNECTED_ROADS:
			net.removeDisconnectedRoads()
		case TRANSFORM_COLLAPSE_SAUSAGE_LINKS:
			net.collapseSausageLinks()
		case TRANSFORM_ZIP_SIDEPATHS:
			net.zipSidepaths()
		case TRANSFORM_MERGE_DUAL_CARRIAGEWAYS:
			net.mergeDualCarriageways()
		case TRANSFORM_FIND_SHORT_ROADS:
			net.findShortRoads()
		case TRANSFORM_COLLAPSE_SHORT_ROADS:
			net.collapseAllShortRoads()
		case TRANSFORM_COLLAPSE_DEGENERATE_INTERSECTIONS:
			net.collapseDegenerateIntersections()
		case TRANSFORM_CLASSIFY_INTERSECTIONS:
			net.ClassifyIntersections()
		default:
			log.Warnw("unknown transformation, skipping", "transformation", transformation)
			continue
		}
		if net.options.Verbose {
			log.Infow("applied transformation", "transformation", transformation.String(), "elapsed", time.Since(st))
		}
	}
}
