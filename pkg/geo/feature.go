package geo

import (
	"github.com/paulmach/orb"
)

// ToOrb converts a Point to an orb.Point (lon, lat order).
func ToOrb(p Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb.Point back to a Point.
func FromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

// LineString builds an orb.LineString from a polyline.
func LineString(path []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, p := range path {
		ls = append(ls, ToOrb(p))
	}
	return ls
}

// Bound returns the bounding box of the given points.
// An empty input yields an empty bound at the origin.
func Bound(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, ToOrb(p))
	}
	return mp.Bound()
}
