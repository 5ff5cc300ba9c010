package domain

import "math"

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether both coordinates are finite and within range.
// The geometry predicate assumes well-formed input, so callers reject
// anything else before evaluating.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// LocationSample is one position report from the transport. Continuous marks
// samples from a live location stream as opposed to a single shared pin.
type LocationSample struct {
	OwnerID    int64
	Point      Point
	Continuous bool
}
