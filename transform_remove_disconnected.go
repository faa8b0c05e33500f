package streetgraph

// removeDisconnectedRoads keeps only the largest connected component of the
// road graph. Small disconnected islands come from clipping and from mapping
// errors; downstream consumers expect one routable network.
func (net *StreetNetwork) removeDisconnectedRoads() {
	visited := make(map[RoadID]struct{}, len(net.roads))
	var largest []RoadID

	for _, start := range net.roadIDsSorted() {
		if _, done := visited[start]; done {
			continue
		}
		component := []RoadID{}
		queue := []RoadID{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for _, i := range net.roads[current].endpoints() {
				for _, next := range net.intersections[i].roads {
					if _, done := visited[next]; done {
						continue
					}
					visited[next] = struct{}{}
					queue = append(queue, next)
				}
			}
		}
		if len(component) > len(largest) {
			largest = component
		}
	}

	keep := make(map[RoadID]struct{}, len(largest))
	for _, r := range largest {
		keep[r] = struct{}{}
	}
	removedRoads := 0
	for _, r := range net.roadIDsSorted() {
		if _, ok := keep[r]; ok {
			continue
		}
		if _, err := net.RemoveRoad(r); err == nil {
			removedRoads++
		}
	}
	removedIntersections := 0
	for _, i := range net.intersectionIDsSorted() {
		if len(net.intersections[i].roads) == 0 {
			if err := net.DeleteIntersection(i); err == nil {
				removedIntersections++
			}
		}
	}
	if removedRoads > 0 && net.options.Verbose {
		log.Infow("removed disconnected roads", "roads", removedRoads, "intersections", removedIntersections)
	}
}
