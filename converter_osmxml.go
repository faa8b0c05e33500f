package streetgraph

import (
	"encoding/xml"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

/* OSM XML round trip for tag editing workflows: export a way, edit its tags
in an external tool, feed it back through OverwriteOSMTagsForWay. */

// WayToXML serializes the current tags of one tracked way as an OSM XML way
// element. Node references aren't reconstructable after merges and are left
// out.
func (net *StreetNetwork) WayToXML(wayID osm.WayID) (string, error) {
	var tags osm.Tags
	found := false
	for _, id := range net.roadIDsSorted() {
		road := net.roads[id]
		for _, w := range road.osmWayIDs {
			if w == wayID {
				tags = road.tags
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return "", errors.Wrapf(ErrWayNotTracked, "way %d", wayID)
	}
	way := &osm.Way{ID: wayID, Tags: tags}
	data, err := xml.MarshalIndent(way, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "can't marshal way")
	}
	return string(data), nil
}

// WayFromXML parses a single OSM XML way element back into its ID and tags
func WayFromXML(data string) (osm.WayID, osm.Tags, error) {
	var way osm.Way
	if err := xml.Unmarshal([]byte(data), &way); err != nil {
		return 0, nil, errors.Wrap(err, "can't unmarshal way")
	}
	return way.ID, way.Tags, nil
}

// ApplyWayXML is the round trip: parse an edited way element and overwrite
// the tags of the roads that came from it.
func (net *StreetNetwork) ApplyWayXML(data string) error {
	wayID, tags, err := WayFromXML(data)
	if err != nil {
		return err
	}
	return net.OverwriteOSMTagsForWay(wayID, tags)
}
