// Package geo computes great-circle distances for geofence validation.
package geo

import (
	"math"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6_371_000

// metersPerMile converts statute miles to meters.
const metersPerMile = 1609.344

// Distance returns the haversine distance between a and b in meters.
// Always finite and non-negative for valid coordinates.
func Distance(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// MilesToMeters converts statute miles to meters.
func MilesToMeters(mi float64) float64 {
	return mi * metersPerMile
}
