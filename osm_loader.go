package streetgraph

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// rawOSMData is the unprocessed extract: every kept way with its node list,
// every referenced node, and the turn restriction relations.
type rawOSMData struct {
	nodes        map[osm.NodeID]*importNode
	ways         []*importWay
	restrictions []importRestriction
}

type importNode struct {
	id       osm.NodeID
	point    orb.Point // WGS84
	control  ControlType
	useCount int
}

type importWay struct {
	id    osm.WayID
	nodes []osm.NodeID
	tags  osm.Tags
	// oneway=-1: node order runs against traffic and must be flipped
	reversed bool
}

type importRestriction struct {
	restrictionType RestrictionType
	fromWay         osm.WayID
	toWay           osm.WayID
	viaNode         osm.NodeID
	viaWay          osm.WayID
	hasViaWay       bool
}

func newScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	}
	return nil, errors.Errorf("file extension '%s' for file '%s' is not handled yet", ext, filename)
}

// wayKept filters the extract down to ways that become roads
func wayKept(tags osm.Tags) bool {
	if isAreaTagged(tags) {
		return false
	}
	highway := tags.Find("highway")
	if highway != "" {
		_, negligible := negligibleHighwayTags[highway]
		return !negligible
	}
	_, lightRail := lightRailRailwayTags[tags.Find("railway")]
	return lightRail
}

// readOSM scans the file three times: ways first to learn which nodes matter,
// then nodes, then restriction relations.
func readOSM(filename string, verbose bool) (*rawOSMData, error) {
	if verbose {
		log.Infow("opening file", "filename", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	/* Process ways */
	st := time.Now()
	ways := []*importWay{}
	nodesSeen := make(map[osm.NodeID]struct{})
	{
		scannerWays, err := newScanner(filename, file)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			if !wayKept(way.Tags) {
				continue
			}
			_, reversed := isOnewayTagged(way.Tags)
			prepared := &importWay{
				id:       way.ID,
				nodes:    make([]osm.NodeID, 0, len(way.Nodes)),
				tags:     make(osm.Tags, len(way.Tags)),
				reversed: reversed,
			}
			copy(prepared.tags, way.Tags)
			for _, node := range way.Nodes {
				nodesSeen[node.ID] = struct{}{}
				prepared.nodes = append(prepared.nodes, node.ID)
			}
			ways = append(ways, prepared)
		}
		if err := scannerWays.Err(); err != nil {
			return nil, err
		}
	}
	if verbose {
		log.Infow("processed ways", "ways", len(ways), "elapsed", time.Since(st))
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	st = time.Now()
	nodes := make(map[osm.NodeID]*importNode)
	{
		scannerNodes, err := newScanner(filename, file)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; !ok {
				continue
			}
			delete(nodesSeen, node.ID)
			control := CONTROL_UNCONTROLLED
			switch node.Tags.Find("highway") {
			case "traffic_signals":
				control = CONTROL_SIGNAL
			case "stop":
				control = CONTROL_STOP_SIGN
			}
			nodes[node.ID] = &importNode{
				id:      node.ID,
				point:   orb.Point{node.Lon, node.Lat},
				control: control,
			}
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, err
		}
	}
	if verbose {
		log.Infow("processed nodes", "nodes", len(nodes), "elapsed", time.Since(st))
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "can't repeat seeking after nodes scanning")
	}

	/* Process maneuvers (turn restrictions only) */
	st = time.Now()
	skippedRestrictions := 0
	restrictions := []importRestriction{}
	{
		scannerRelations, err := newScanner(filename, file)
		if err != nil {
			return nil, err
		}
		defer scannerRelations.Close()
		for scannerRelations.Scan() {
			obj := scannerRelations.Object()
			if obj.ObjectID().Type() != "relation" {
				continue
			}
			relation := obj.(*osm.Relation)
			restriction, ok := parseRestriction(relation)
			if !ok {
				skippedRestrictions++
				continue
			}
			restrictions = append(restrictions, restriction)
		}
		if err := scannerRelations.Err(); err != nil {
			return nil, err
		}
	}
	if verbose {
		log.Infow("processed maneuvers", "restrictions", len(restrictions), "skipped", skippedRestrictions, "elapsed", time.Since(st))
	}

	return &rawOSMData{
		nodes:        nodes,
		ways:         ways,
		restrictions: restrictions,
	}, nil
}

// parseRestriction extracts a from/via/to triple. Only way-node-way and
// way-way-way restrictions are supported.
func parseRestriction(relation *osm.Relation) (importRestriction, bool) {
	value := relation.Tags.Find("restriction")
	if value == "" {
		return importRestriction{}, false
	}
	var restrictionType RestrictionType
	switch {
	case len(value) >= 3 && value[:3] == "no_":
		restrictionType = RESTRICTION_BAN_TURNS
	case len(value) >= 5 && value[:5] == "only_":
		restrictionType = RESTRICTION_ONLY_ALLOW_TURNS
	default:
		return importRestriction{}, false
	}
	if len(relation.Members) != 3 {
		return importRestriction{}, false
	}
	out := importRestriction{restrictionType: restrictionType}
	fromSeen, toSeen, viaSeen := false, false, false
	for _, member := range relation.Members {
		switch member.Role {
		case "from":
			if member.Type != osm.TypeWay {
				return importRestriction{}, false
			}
			out.fromWay = osm.WayID(member.Ref)
			fromSeen = true
		case "to":
			if member.Type != osm.TypeWay {
				return importRestriction{}, false
			}
			out.toWay = osm.WayID(member.Ref)
			toSeen = true
		case "via":
			switch member.Type {
			case osm.TypeNode:
				out.viaNode = osm.NodeID(member.Ref)
			case osm.TypeWay:
				out.viaWay = osm.WayID(member.Ref)
				out.hasViaWay = true
			default:
				return importRestriction{}, false
			}
			viaSeen = true
		default:
			return importRestriction{}, false
		}
	}
	if !fromSeen || !toSeen || !viaSeen {
		return importRestriction{}, false
	}
	return out, true
}
