// Package geo implements the great-circle containment predicate for
// circular geofences.
package geo

import (
	"math"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b domain.Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// IsInside reports whether p lies within radiusMeters of center along the
// geodesic. A point exactly on the boundary counts as inside.
func IsInside(p, center domain.Point, radiusMeters int) bool {
	return Distance(p, center) <= float64(radiusMeters)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
