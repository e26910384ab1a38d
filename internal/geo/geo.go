package geo

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle math.
const earthRadiusKm = 6371.0

// walkingSpeedKmh is the assumed pedestrian pace for walking-time estimates.
const walkingSpeedKmh = 5.0

// Point is a WGS 84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within coordinate bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine great-circle distance between two points in
// kilometres. Identical points yield exactly zero.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	dLat := ToRadians(b.Lat - a.Lat)
	dLng := ToRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(ToRadians(a.Lat))*math.Cos(ToRadians(b.Lat))*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// WalkingMinutes estimates how long the given distance takes on foot.
func WalkingMinutes(km float64) float64 {
	return km / walkingSpeedKmh * 60
}

// WalkingRadiusKm is the inverse of WalkingMinutes: the distance coverable in
// the given number of minutes.
func WalkingRadiusKm(minutes float64) float64 {
	return minutes / 60 * walkingSpeedKmh
}

// IsWithinWalkingDistance reports whether b is reachable from a within
// maxMinutes on foot. Boundary equality counts as within.
func IsWithinWalkingDistance(a, b Point, maxMinutes float64) bool {
	return WalkingMinutes(Distance(a, b)) <= maxMinutes
}
