// Package zone geo_utils contains pure geographic computation helpers.
package zone

import "math"

const (
	earthRadiusKm = 6371.0
	// kmPerDegree is the flat-Earth scale used for polygon areas.
	kmPerDegree = 111.0
)

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// sortByPriority performs a stable insertion sort (fine for small N),
// highest priority first. Equal priorities keep their input order.
func sortByPriority[T any](items []T, priority func(T) int) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && priority(items[j]) < priority(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
