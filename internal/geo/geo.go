package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result classifies one observed coordinate against a circular geofence.
type Result struct {
	DistanceMeters float64 `json:"distance_meters"`
	Inside         bool    `json:"inside"`
}

// Distance returns the haversine great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Floating round-off can push h marginally outside [0,1] for antipodal
	// or coincident points; clamp before the square roots.
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Evaluate classifies an observed coordinate against the workplace geofence.
// Pure and deterministic: no mutation, no I/O.
func Evaluate(observed, workplace Point, radiusMeters float64) Result {
	d := Distance(observed, workplace)
	return Result{
		DistanceMeters: d,
		Inside:         d <= radiusMeters,
	}
}
