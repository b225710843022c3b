// README: Point-in-zone tests and zone area math.
package zone

import (
	"math"

	"chauffeur/internal/types"
)

// IsInRadius reports whether p lies within area.RadiusKm of the centre.
func IsInRadius(p types.Point, area *RadiusArea) bool {
	if area == nil || area.RadiusKm < 0 {
		return false
	}
	return haversineKm(p.Lat, p.Lng, area.Center.Lat, area.Center.Lng) <= area.RadiusKm
}

// IsInPolygon runs a ray-casting parity test over the ordered vertices.
// Fewer than three vertices never match. Points lying exactly on an edge or
// vertex may land on either side depending on edge orientation.
func IsInPolygon(p types.Point, paths []types.Point) bool {
	if len(paths) < 3 {
		return false
	}
	inside := false
	j := len(paths) - 1
	for i := range paths {
		xi, yi := paths[i].Lng, paths[i].Lat
		xj, yj := paths[j].Lng, paths[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) && p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// IsInAdministrative is a plain bounding-box test. Boxes crossing the
// anti-meridian (west > east) are not supported and never match.
func IsInAdministrative(p types.Point, b Bounds) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Contains dispatches on the geography tag.
func Contains(z Zone, p types.Point) bool {
	g := z.Geography
	switch g.Type {
	case KindRadius:
		return IsInRadius(p, g.Radius)
	case KindPolygon:
		if g.Polygon == nil {
			return false
		}
		return IsInPolygon(p, g.Polygon.Paths)
	case KindAdministrative:
		if g.Administrative == nil {
			return false
		}
		return IsInAdministrative(p, g.Administrative.Bounds)
	default:
		return false
	}
}

// FindContainingZones returns the enabled zones containing p, highest
// priority first. Ties keep the order of zones.
func FindContainingZones(p types.Point, zones []Zone) []Zone {
	var out []Zone
	for _, z := range zones {
		if z.Enabled && Contains(z, p) {
			out = append(out, z)
		}
	}
	sortByPriority(out, Zone.EffectivePriority)
	return out
}

// Area returns the zone surface in km². Polygons use the shoelace formula on
// raw degrees scaled by 111² km²/deg², which overestimates east-west extent
// away from the equator.
func Area(z Zone) float64 {
	g := z.Geography
	switch g.Type {
	case KindRadius:
		if g.Radius == nil {
			return 0
		}
		return math.Pi * g.Radius.RadiusKm * g.Radius.RadiusKm
	case KindPolygon:
		if g.Polygon == nil || len(g.Polygon.Paths) < 3 {
			return 0
		}
		return shoelaceDegrees(g.Polygon.Paths) * kmPerDegree * kmPerDegree
	case KindAdministrative:
		if g.Administrative == nil {
			return 0
		}
		b := g.Administrative.Bounds
		width := haversineKm(b.North, b.West, b.North, b.East)
		height := haversineKm(b.North, b.West, b.South, b.West)
		return width * height
	default:
		return 0
	}
}

func shoelaceDegrees(paths []types.Point) float64 {
	var sum float64
	j := len(paths) - 1
	for i := range paths {
		sum += paths[j].Lng*paths[i].Lat - paths[i].Lng*paths[j].Lat
		j = i
	}
	return math.Abs(sum) / 2
}
