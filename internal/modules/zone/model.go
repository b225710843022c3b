// README: Zone model; operator-drawn service areas with their own vehicle tariffs.
package zone

import "chauffeur/internal/types"

// Kind tags which geography variant a zone carries.
type Kind string

const (
	KindRadius         Kind = "radius"
	KindPolygon        Kind = "polygon"
	KindAdministrative Kind = "administrative"
)

const defaultPriority = 1

type RadiusArea struct {
	Center   types.Point `json:"center" firestore:"center"`
	RadiusKm float64     `json:"radiusKm" firestore:"radiusKm"`
}

type PolygonArea struct {
	Paths []types.Point `json:"paths" firestore:"paths"`
}

type Bounds struct {
	North float64 `json:"north" firestore:"north"`
	South float64 `json:"south" firestore:"south"`
	East  float64 `json:"east" firestore:"east"`
	West  float64 `json:"west" firestore:"west"`
}

type AdministrativeArea struct {
	Bounds Bounds `json:"bounds" firestore:"bounds"`
}

// Geography is a tagged variant: Type selects which one of the pointers is
// populated. A tag without its payload is invalid and never matches.
type Geography struct {
	Type           Kind                `json:"type" firestore:"type"`
	Radius         *RadiusArea         `json:"radius,omitempty" firestore:"radius,omitempty"`
	Polygon        *PolygonArea        `json:"polygon,omitempty" firestore:"polygon,omitempty"`
	Administrative *AdministrativeArea `json:"administrative,omitempty" firestore:"administrative,omitempty"`
}

type Pricing struct {
	BasePrice      float64 `json:"basePrice" firestore:"basePrice"`
	PricePerKm     float64 `json:"pricePerKm" firestore:"pricePerKm"`
	PricePerMinute float64 `json:"pricePerMinute" firestore:"pricePerMinute"`
	MinPrice       float64 `json:"minPrice" firestore:"minPrice"`
	KmThreshold    float64 `json:"kmThreshold" firestore:"kmThreshold"`
}

type VehiclePricing struct {
	VehicleID         string  `json:"vehicleId" firestore:"vehicleId"`
	Enabled           bool    `json:"enabled" firestore:"enabled"`
	UseDefaultPricing bool    `json:"useDefaultPricing" firestore:"useDefaultPricing"`
	Pricing           Pricing `json:"pricing" firestore:"pricing"`
}

// DateRange bounds are inclusive calendar dates formatted as 2006-01-02.
type DateRange struct {
	Start string `json:"start" firestore:"start"`
	End   string `json:"end" firestore:"end"`
}

type Restrictions struct {
	MinBookingHours float64    `json:"minBookingHours" firestore:"minBookingHours"`
	AllowedDays     []int      `json:"allowedDays,omitempty" firestore:"allowedDays,omitempty"`
	DateRange       *DateRange `json:"dateRange,omitempty" firestore:"dateRange,omitempty"`
}

type Zone struct {
	ID             string           `json:"id" firestore:"id"`
	Name           string           `json:"name" firestore:"name"`
	Enabled        bool             `json:"enabled" firestore:"enabled"`
	Priority       *int             `json:"priority,omitempty" firestore:"priority,omitempty"`
	Geography      Geography        `json:"geography" firestore:"geography"`
	VehiclePricing []VehiclePricing `json:"vehiclePricing" firestore:"vehiclePricing"`
	Restrictions   Restrictions     `json:"restrictions" firestore:"restrictions"`
}

// EffectivePriority returns the zone priority, 1 when unset.
func (z Zone) EffectivePriority() int {
	if z.Priority == nil {
		return defaultPriority
	}
	return *z.Priority
}

// DefaultID takes the storage key as the zone id when the document has none.
func (z *Zone) DefaultID(id string) {
	if z.ID == "" {
		z.ID = id
	}
}

// vehicle returns the pricing entry for vehicleID, if any.
func (z Zone) vehicle(vehicleID string) (VehiclePricing, bool) {
	for _, vp := range z.VehiclePricing {
		if vp.VehicleID == vehicleID {
			return vp, true
		}
	}
	return VehiclePricing{}, false
}
