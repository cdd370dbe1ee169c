// Package geo judges map-click answers by great-circle distance.
package geo

import (
	"math"

	"github.com/playperu/geoquest/internal/geoquest"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between a and b. Inputs must be
// valid latitudes and longitudes; radii are ignored.
func DistanceKm(a, b geoquest.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether click lies within the target's acceptance
// radius. The boundary is inclusive.
func WithinRadius(click, target geoquest.Coordinates) bool {
	return DistanceKm(click, target) <= target.AcceptanceRadius()
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
