package streetgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

/* WKT export, WGS84 coordinates. Handy for loading results into PostGIS. */

// RoadWKT returns the trimmed center line of one road as WKT
func (net *StreetNetwork) RoadWKT(id RoadID) (string, error) {
	road, err := net.Road(id)
	if err != nil {
		return "", err
	}
	center, err := road.TrimmedCenterLine()
	if err != nil {
		return "", errors.Wrapf(err, "road %d", id)
	}
	return wkt.MarshalString(lineToWGS84(center)), nil
}

// IntersectionWKT returns the polygon of one intersection as WKT
func (net *StreetNetwork) IntersectionWKT(id IntersectionID) (string, error) {
	inter, err := net.Intersection(id)
	if err != nil {
		return "", err
	}
	polygon, err := inter.Polygon()
	if err != nil {
		return "", errors.Wrapf(err, "intersection %d", id)
	}
	return wkt.MarshalString(orb.Polygon{ringToWGS84(polygon)}), nil
}
