package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/spf13/viper"
)

type DrivingSide uint16

const (
	DRIVING_SIDE_RIGHT = DrivingSide(iota + 1)
	DRIVING_SIDE_LEFT
)

func (iotaIdx DrivingSide) String() string {
	return [...]string{"right", "left"}[iotaIdx-1]
}

// Options controls import and the transformation pipeline
type Options struct {
	DrivingSide DrivingSide
	// ClipBoundary (WGS84) cuts roads crossing it and marks the cut points as
	// map edges. Empty means no clipping.
	ClipBoundary orb.Ring
	// DebugEachStep snapshots the network after every transformation
	DebugEachStep bool
	// Experimental features
	MergeDualCarriageways bool
	SnapCycleways         bool
	InferSidewalks        bool
	Verbose               bool
}

func DefaultOptions() Options {
	return Options{
		DrivingSide:    DRIVING_SIDE_RIGHT,
		InferSidewalks: true,
	}
}

// thresholds are the heuristic constants of the pipeline. There's no canonical
// derivation for these; they're tuned against the regression corpus and can be
// overridden through the environment.
type thresholds struct {
	shortRoadMeters         float64
	signalClusterMeters     float64
	sausageLinkMeters       float64
	sidepathConnectorMeters float64
	deadendCyclewayMeters   float64
	degenerateHalfLength    float64
	cyclewaySnapMeters      float64
	blockTraceLimit         int
}

func loadThresholds() thresholds {
	viper.SetDefault("STREETGRAPH_SHORT_ROAD_METERS", 5.0)
	viper.SetDefault("STREETGRAPH_SIGNAL_CLUSTER_METERS", 20.0)
	viper.SetDefault("STREETGRAPH_SAUSAGE_LINK_METERS", 50.0)
	viper.SetDefault("STREETGRAPH_SIDEPATH_CONNECTOR_METERS", 10.0)
	viper.SetDefault("STREETGRAPH_DEADEND_CYCLEWAY_METERS", 50.0)
	viper.SetDefault("STREETGRAPH_DEGENERATE_HALF_LENGTH_METERS", 2.5)
	viper.SetDefault("STREETGRAPH_CYCLEWAY_SNAP_METERS", 8.0)
	viper.SetDefault("STREETGRAPH_BLOCK_TRACE_LIMIT", 5000)
	viper.AutomaticEnv()
	return thresholds{
		shortRoadMeters:         viper.GetFloat64("STREETGRAPH_SHORT_ROAD_METERS"),
		signalClusterMeters:     viper.GetFloat64("STREETGRAPH_SIGNAL_CLUSTER_METERS"),
		sausageLinkMeters:       viper.GetFloat64("STREETGRAPH_SAUSAGE_LINK_METERS"),
		sidepathConnectorMeters: viper.GetFloat64("STREETGRAPH_SIDEPATH_CONNECTOR_METERS"),
		deadendCyclewayMeters:   viper.GetFloat64("STREETGRAPH_DEADEND_CYCLEWAY_METERS"),
		degenerateHalfLength:    viper.GetFloat64("STREETGRAPH_DEGENERATE_HALF_LENGTH_METERS"),
		cyclewaySnapMeters:      viper.GetFloat64("STREETGRAPH_CYCLEWAY_SNAP_METERS"),
		blockTraceLimit:         viper.GetInt("STREETGRAPH_BLOCK_TRACE_LIMIT"),
	}
}

// unimportantTags never block a degenerate-intersection collapse when they
// are the only difference between the two roads
var unimportantTags = map[string]struct{}{
	"surface":       {},
	"lit":           {},
	"maxspeed:type": {},
	"old_ref":       {},
	"source":        {},
}
