package geo

import "math"

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance in kilometres between two
// points, rounded to 2 decimals. Inputs are assumed range-valid; callers
// validate coordinates before asking for distances. The atan2 formulation
// keeps the result stable near the poles and antipodal points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLng*sinLng
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Round2(earthRadiusKm * c)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Round1 rounds to 1 decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
