package geo

import "math"

// earthRadiusInMeters represents the mean radius of the Earth in meters.
//
// This value (6,371,000 meters) is defined as the Earth's volumetric mean radius,
// which is commonly used for general geospatial calculations and spherical approximations.
//
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const earthRadiusInMeters = 6371000

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = earthRadiusInMeters * math.Pi / 180

// HaversineDistance returns the great-circle surface distance in meters between
// two points given in degrees.
//
// The result is symmetric, never negative and zero for identical points. The
// atan2 form stays well defined for coincident and antipodal points.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	sinDPhi := math.Sin(deltaPhi / 2)
	sinDLambda := math.Sin(deltaLambda / 2)

	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusInMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
