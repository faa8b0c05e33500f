package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/streetgraph"
)

var (
	osmFileName    = flag.String("file", "my_area.osm.pbf", "Filename of *.osm / *.osm.pbf file")
	out            = flag.String("out", "my_area.geojson", "Filename of output GeoJSON file")
	detail         = flag.String("detail", "plain", "Output detail. Expected values: plain / lanes / markings / crossings")
	drivingSideStr = flag.String("driving-side", "right", "Driving side. Expected values: right / left")
	inferSidewalks = flag.Bool("infer-sidewalks", true, "Infer sidewalks on untagged roads?")
	dualCarriage   = flag.Bool("merge-dual-carriageways", false, "Experimental: detect dual carriageway splits")
	snapCycleways  = flag.Bool("snap-cycleways", false, "Experimental: snap separate cycleways into main roads")
	debugSteps     = flag.Bool("debug-steps", false, "Snapshot the network before each transformation?")
	verbose        = flag.Bool("verbose", true, "Print progress?")
)

func main() {
	flag.Parse()

	options := streetgraph.DefaultOptions()
	options.InferSidewalks = *inferSidewalks
	options.MergeDualCarriageways = *dualCarriage
	options.SnapCycleways = *snapCycleways
	options.DebugEachStep = *debugSteps
	options.Verbose = *verbose
	if strings.ToLower(*drivingSideStr) == "left" {
		options.DrivingSide = streetgraph.DRIVING_SIDE_LEFT
	}

	st := time.Now()
	net, err := streetgraph.NewFromOSMFile(*osmFileName, options)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Imported %d roads and %d intersections in %v\n", net.RoadsNum(), net.IntersectionsNum(), time.Since(st))

	st = time.Now()
	net.ApplyTransformations(streetgraph.StandardTransformations(options))
	fmt.Printf("Simplified to %d roads and %d intersections in %v\n", net.RoadsNum(), net.IntersectionsNum(), time.Since(st))

	st = time.Now()
	if err := net.GenerateIntersectionGeometry(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Generated geometry in %v\n", time.Since(st))

	var fc interface{ MarshalJSON() ([]byte, error) }
	switch strings.ToLower(*detail) {
	case "lanes":
		fc, err = net.ToGeoJSONDetailed()
	case "markings":
		fc, err = net.ToGeoJSONLaneMarkings()
	case "crossings":
		fc, err = net.ToGeoJSONIntersectionMarkings()
	default:
		fc, err = net.ToGeoJSONPlain()
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Wrote %s\n", *out)
}
