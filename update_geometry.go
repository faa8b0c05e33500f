package streetgraph

import (
	"runtime"

	"github.com/paulmach/orb"
)

// snapshotInputs copies everything the geometry algorithm needs about one
// intersection's roads, in clockwise order. The snapshot decouples the
// computation from the live network so many intersections can run at once.
func (net *StreetNetwork) snapshotInputs(id IntersectionID) []inputRoad {
	inter := net.intersections[id]
	inputs := make([]inputRoad, 0, len(inter.roads))
	for _, r := range inter.roads {
		road := net.roads[r]
		center := make(orb.LineString, len(road.geomEuclidean))
		copy(center, road.geomEuclidean)
		inputs = append(inputs, inputRoad{
			id:        r,
			sourceI:   road.sourceIntersectionID,
			targetI:   road.targetIntersectionID,
			center:    center,
			halfWidth: road.halfWidth(),
			highway:   road.highway,
		})
	}
	return inputs
}

type geometryJob struct {
	intersection         IntersectionID
	roads                []inputRoad
	trimForMerging       map[mergeTrimKey]orb.Point
	degenerateHalfLength float64
}

// GenerateIntersectionGeometry recomputes every intersection polygon and every
// road's trimmed center line from untrimmed geometry. Always reads untrimmed
// inputs, so calling it twice in a row changes nothing. Computation is fanned
// out per intersection; results are applied on the calling goroutine.
func (net *StreetNetwork) GenerateIntersectionGeometry() error {
	net.geomStats = GeometryStats{}
	for _, road := range net.roads {
		road.invalidateGeometry()
	}

	ids := net.intersectionIDsSorted()
	pool := newWorkerPool[geometryJob, geometryResult](runtime.NumCPU(), len(ids))
	pool.start(func(job geometryJob) geometryResult {
		return intersectionPolygon(job.intersection, job.roads, job.trimForMerging, job.degenerateHalfLength)
	})
	go func() {
		for _, id := range ids {
			inter := net.intersections[id]
			if len(inter.roads) == 0 {
				continue
			}
			pool.addJob(geometryJob{
				intersection:         id,
				roads:                net.snapshotInputs(id),
				trimForMerging:       inter.trimRoadsForMerging,
				degenerateHalfLength: net.limits.degenerateHalfLength,
			})
		}
		pool.close()
		pool.wait()
	}()

	for result := range pool.collectResults() {
		net.applyGeometryResult(result)
	}

	for _, id := range net.roadIDsSorted() {
		net.roads[id].applyTrim()
	}
	for _, id := range ids {
		inter := net.intersections[id]
		if len(inter.roads) == 0 && !inter.polygonValid {
			net.fallbackPolygon(inter)
		}
	}
	if net.options.Verbose {
		log.Infow("generated intersection geometry",
			"intersections", len(ids),
			"clamped_trims", net.geomStats.ClampedTrims,
			"bowtie_polygons", net.geomStats.BowtiePolygons,
			"fallback_polygons", net.geomStats.FallbackPolygons,
		)
	}
	return nil
}

// regenerateGeometry recomputes geometry only around the given intersections.
// Roads touching them get trims recomputed at both ends, so their opposite
// intersections are processed too.
func (net *StreetNetwork) regenerateGeometry(ids ...IntersectionID) {
	affected := make(map[IntersectionID]struct{}, len(ids))
	for _, id := range ids {
		inter, ok := net.intersections[id]
		if !ok {
			continue
		}
		affected[id] = struct{}{}
		for _, r := range inter.roads {
			affected[net.roads[r].otherSide(id)] = struct{}{}
		}
	}
	// Drop cached lines but keep recorded trims: roads reaching outside the
	// affected set keep their far-end trim.
	for id := range affected {
		inter := net.intersections[id]
		for _, r := range inter.roads {
			road := net.roads[r]
			road.geomValid = false
			road.trimmedLine = nil
		}
	}
	touched := make(map[RoadID]struct{})
	for id := range affected {
		inter := net.intersections[id]
		if len(inter.roads) == 0 {
			net.fallbackPolygon(inter)
			continue
		}
		result := intersectionPolygon(id, net.snapshotInputs(id), inter.trimRoadsForMerging, net.limits.degenerateHalfLength)
		net.applyGeometryResult(result)
		for _, r := range inter.roads {
			touched[r] = struct{}{}
		}
	}
	for r := range touched {
		road := net.roads[r]
		// The far end may be outside the affected set and keep its old trim
		road.applyTrim()
	}
}

func (net *StreetNetwork) applyGeometryResult(result geometryResult) {
	inter := net.intersections[result.intersection]
	if result.err != nil {
		log.Warnw("intersection geometry failed, using fallback square", "intersection", result.intersection, "error", result.err)
		net.fallbackPolygon(inter)
		return
	}
	inter.polygon = result.polygon
	inter.polygonValid = true
	net.geomStats.ClampedTrims += result.clampedTrims
	if result.bowtie {
		net.geomStats.BowtiePolygons++
	}
	for r, trim := range result.trims {
		road := net.roads[r]
		if road.sourceIntersectionID == result.intersection {
			road.trimStart = trim
		} else {
			road.trimEnd = trim
		}
	}
}

// fallbackPolygon gives an intersection a small square so downstream consumers
// never see a missing polygon.
func (net *StreetNetwork) fallbackPolygon(inter *Intersection) {
	half := net.limits.degenerateHalfLength
	pt := inter.point
	inter.polygon = orb.Ring{
		{pt[0] - half, pt[1] - half},
		{pt[0] + half, pt[1] - half},
		{pt[0] + half, pt[1] + half},
		{pt[0] - half, pt[1] + half},
		{pt[0] - half, pt[1] - half},
	}
	inter.polygonValid = true
	net.geomStats.FallbackPolygons++
}
