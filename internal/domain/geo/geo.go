// Package geo provides coordinate types and great-circle distance math for
// the delivery fee subsystem.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// roadBuffer approximates road distance from a straight line. Actual driving
// routes in the Calinan area run about 20% longer than the crow flies.
const roadBuffer = 1.2

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Distance returns the great-circle (haversine) distance between a and b in
// kilometers.
func Distance(a, b Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// RoadDistance returns the haversine distance between a and b multiplied by
// a fixed buffer factor to approximate the actual road distance.
func RoadDistance(a, b Coordinate) float64 {
	return Distance(a, b) * roadBuffer
}

// Round1 rounds a distance to one decimal place, the precision used for all
// user-facing distances.
func Round1(km float64) float64 {
	return math.Round(km*10) / 10
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
