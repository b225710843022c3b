// README: Identifier and coordinate value objects shared by modules.
package types

import "math"

type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Valid reports whether p is a usable coordinate. The widget posts 0,0 for
// addresses it could not resolve, so the null island is rejected too.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return false
	}
	return p.Lat != 0 || p.Lng != 0
}
