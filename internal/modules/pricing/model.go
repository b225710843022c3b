// README: Pricing model; operator tariffs, fare inputs and the itemized breakdown.
package pricing

import (
	"strings"
	"time"

	"chauffeur/internal/modules/zone"
	"chauffeur/internal/types"
)

type VehiclePricing struct {
	BasePrice   float64 `json:"basePrice" firestore:"basePrice"`
	PerKm       float64 `json:"perKm" firestore:"perKm"`
	MinPrice    float64 `json:"minPrice" firestore:"minPrice"`
	KmThreshold float64 `json:"kmThreshold" firestore:"kmThreshold"`
}

// LuggagePolicy expects Max >= Included >= 0.
type LuggagePolicy struct {
	Included      int     `json:"included" firestore:"included"`
	Max           int     `json:"max" firestore:"max"`
	PricePerExtra float64 `json:"pricePerExtra" firestore:"pricePerExtra"`
}

type Vehicle struct {
	ID            string         `json:"id" firestore:"id"`
	Name          string         `json:"name" firestore:"name"`
	MaxPassengers int            `json:"maxPassengers" firestore:"maxPassengers"`
	Pricing       VehiclePricing `json:"pricing" firestore:"pricing"`
	Luggage       LuggagePolicy  `json:"luggage" firestore:"luggage"`
}

// Package is a flat-rate fare keyed on address keywords (airport transfers etc.).
type Package struct {
	ID             string   `json:"id" firestore:"id"`
	Name           string   `json:"name" firestore:"name"`
	Enabled        bool     `json:"enabled" firestore:"enabled"`
	Price          float64  `json:"price" firestore:"price"`
	DepartureZones []string `json:"departureZones,omitempty" firestore:"departureZones,omitempty"`
	ArrivalZones   []string `json:"arrivalZones,omitempty" firestore:"arrivalZones,omitempty"`
	VehicleTypes   []string `json:"vehicleTypes,omitempty" firestore:"vehicleTypes,omitempty"`
}

type SurchargeKind string

const (
	SurchargeHourly SurchargeKind = "hourly"
	SurchargeWeekly SurchargeKind = "weekly"
)

// HourWindow covers [StartHour, EndHour), wrapping midnight when StartHour > EndHour.
type HourWindow struct {
	StartHour int `json:"startHour" firestore:"startHour"`
	EndHour   int `json:"endHour" firestore:"endHour"`
}

// DaySet holds weekdays, 0 = Sunday.
type DaySet struct {
	Days []int `json:"days" firestore:"days"`
}

// Surcharge is a tagged variant: Type selects Hourly or Weekly.
type Surcharge struct {
	ID      string        `json:"id" firestore:"id"`
	Name    string        `json:"name" firestore:"name"`
	Type    SurchargeKind `json:"type" firestore:"type"`
	Enabled bool          `json:"enabled" firestore:"enabled"`
	Amount  float64       `json:"amount" firestore:"amount"`
	Hourly  *HourWindow   `json:"hourly,omitempty" firestore:"hourly,omitempty"`
	Weekly  *DaySet       `json:"weekly,omitempty" firestore:"weekly,omitempty"`
}

type PromoType string

const (
	PromoPercentage PromoType = "percentage"
	PromoFixed      PromoType = "fixed"
)

type PromoCode struct {
	Code  string    `json:"code" firestore:"code"`
	Type  PromoType `json:"type" firestore:"type"`
	Value float64   `json:"value" firestore:"value"`
}

// Widget is one operator configuration as served by the configuration store.
type Widget struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	BaseFee    float64     `json:"baseFee"`
	Currency   string      `json:"currency"`
	Timezone   string      `json:"timezone"`
	Vehicles   []Vehicle   `json:"vehicles"`
	Zones      []zone.Zone `json:"zones"`
	Packages   []Package   `json:"packages"`
	Surcharges []Surcharge `json:"surcharges"`
}

// DefaultID implementations take the storage key (row id or document id) as
// the id of a configuration document that has none.
func (v *Vehicle) DefaultID(id string) {
	if v.ID == "" {
		v.ID = id
	}
}

func (p *Package) DefaultID(id string) {
	if p.ID == "" {
		p.ID = id
	}
}

func (s *Surcharge) DefaultID(id string) {
	if s.ID == "" {
		s.ID = id
	}
}

// Vehicle returns the vehicle configured under id, nil when unknown.
func (w *Widget) Vehicle(id string) *Vehicle {
	for i := range w.Vehicles {
		if strings.EqualFold(w.Vehicles[i].ID, id) {
			v := w.Vehicles[i]
			return &v
		}
	}
	return nil
}

// Route is what the distance provider reports for a pickup/dropoff pair.
type Route struct {
	DistanceKm  float64 `json:"distanceKm"`
	DurationSec float64 `json:"durationSec"`
}

type Location struct {
	Address string      `json:"address"`
	Point   types.Point `json:"point"`
}

// FareInput bundles everything one fare computation needs. Route nil means
// the distance is unavailable; Vehicle nil means the requested id is unknown.
type FareInput struct {
	Route      *Route
	Vehicle    *Vehicle
	PickupAt   time.Time
	Now        time.Time
	Luggage    int
	Departure  Location
	Arrival    Location
	Surcharges []Surcharge
	Packages   []Package
	Zones      []zone.Zone
	Promo      *PromoCode
	BaseFee    float64
	Currency   string
}

type Tier string

const (
	TierPackage  Tier = "package"
	TierZone     Tier = "zone"
	TierDefault  Tier = "default"
	TierFallback Tier = "fallback"
)

type Detail struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type AppliedPackage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FareBreakdown struct {
	Total           float64         `json:"total"`
	Currency        string          `json:"currency"`
	Tier            Tier            `json:"tier"`
	Details         []Detail        `json:"details"`
	AppliedPackage  *AppliedPackage `json:"appliedPackage,omitempty"`
	UsedKmThreshold bool            `json:"usedKmThreshold"`
	ZoneName        string          `json:"zoneName,omitempty"`
	Luggage         *LuggageResult  `json:"luggage,omitempty"`
	PromoCode       string          `json:"promoCode,omitempty"`
	Restriction     string          `json:"restriction,omitempty"`
	FallbackReason  string          `json:"fallbackReason,omitempty"`
}

// Quote is a computed fare kept server-side so a later booking can be
// checked against the price the customer was shown.
type Quote struct {
	ID        string        `json:"id"`
	WidgetID  string        `json:"widgetId"`
	VehicleID string        `json:"vehicleId"`
	Pickup    Location      `json:"pickup"`
	Dropoff   Location      `json:"dropoff"`
	PickupAt  time.Time     `json:"pickupAt"`
	Route     *Route        `json:"route,omitempty"`
	Breakdown FareBreakdown `json:"breakdown"`
	Warnings  []string      `json:"warnings,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}
