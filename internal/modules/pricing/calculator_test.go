package pricing

import (
	"testing"
	"time"

	"chauffeur/internal/modules/zone"
	"chauffeur/internal/types"
)

var (
	orly    = Location{Address: "Aéroport d'Orly, 94390 Orly", Point: types.Point{Lat: 48.7262, Lng: 2.3652}}
	louvre  = Location{Address: "Musée du Louvre, 75001 Paris", Point: types.Point{Lat: 48.8606, Lng: 2.3376}}
	opera   = Location{Address: "Place de l'Opéra, 75009 Paris", Point: types.Point{Lat: 48.8709, Lng: 2.3318}}
	cdgTerm = Location{Address: "CDG Terminal 2E, Roissy-en-France", Point: types.Point{Lat: 49.0043, Lng: 2.5710}}
)

func testVehicle() *Vehicle {
	return &Vehicle{
		ID:            "sedan",
		Name:          "Business sedan",
		MaxPassengers: 3,
		Pricing:       VehiclePricing{BasePrice: 10, PerKm: 1.2, MinPrice: 15, KmThreshold: 5},
		Luggage:       LuggagePolicy{Included: 2, Max: 4, PricePerExtra: 5},
	}
}

func TestComputeFare(t *testing.T) {
	// Wednesday 2026-03-11 14:00, booked the day before
	afternoon := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
	// Wednesday 2026-03-11 23:15
	lateNight := time.Date(2026, 3, 11, 23, 15, 0, 0, time.UTC)
	now := afternoon.Add(-24 * time.Hour)

	nightSurcharge := Surcharge{ID: "night", Name: "Night surcharge", Type: SurchargeHourly, Enabled: true, Amount: 15,
		Hourly: &HourWindow{StartHour: 22, EndHour: 6}}
	airportPackage := Package{ID: "cdg", Name: "Paris - CDG", Enabled: true, Price: 100,
		DepartureZones: []string{"paris"}, ArrivalZones: []string{"cdg", "roissy"}}

	tests := []struct {
		name          string
		in            FareInput
		wantTotal     float64
		wantTier      Tier
		wantThreshold bool
		wantDetails   int
	}{
		{
			name: "default formula beyond threshold",
			in: FareInput{
				Route: &Route{DistanceKm: 10, DurationSec: 1200}, Vehicle: testVehicle(),
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: opera,
			},
			// 10 + 10*1.2 = 22
			wantTotal:   22,
			wantTier:    TierDefault,
			wantDetails: 1,
		},
		{
			name: "default formula within threshold uses min price",
			in: FareInput{
				Route: &Route{DistanceKm: 3, DurationSec: 600}, Vehicle: testVehicle(),
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: opera,
			},
			wantTotal:     15,
			wantTier:      TierDefault,
			wantThreshold: true,
			wantDetails:   1,
		},
		{
			name: "package overrides distance",
			in: FareInput{
				Route: &Route{DistanceKm: 32, DurationSec: 2700}, Vehicle: testVehicle(),
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: cdgTerm,
				Packages: []Package{airportPackage},
			},
			wantTotal:   100,
			wantTier:    TierPackage,
			wantDetails: 1,
		},
		{
			name: "package plus night surcharge",
			in: FareInput{
				Route: &Route{DistanceKm: 32, DurationSec: 2700}, Vehicle: testVehicle(),
				PickupAt: lateNight, Now: now, Departure: louvre, Arrival: cdgTerm,
				Packages: []Package{airportPackage}, Surcharges: []Surcharge{nightSurcharge},
			},
			// 100 + 15
			wantTotal:   115,
			wantTier:    TierPackage,
			wantDetails: 2,
		},
		{
			name: "luggage overage added to subtotal",
			in: FareInput{
				Route: &Route{DistanceKm: 10}, Vehicle: testVehicle(), Luggage: 3,
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: opera,
			},
			// 22 + 1 bag * 5
			wantTotal:   27,
			wantTier:    TierDefault,
			wantDetails: 2,
		},
		{
			name: "percentage promo on fully loaded amount",
			in: FareInput{
				// 10 + 20*1.2 = 34, + 2 paid bags = 44, + Wednesday surcharge = 50
				Route: &Route{DistanceKm: 20}, Vehicle: testVehicle(), Luggage: 4,
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: opera,
				Surcharges: []Surcharge{{Name: "Wednesday", Type: SurchargeWeekly, Enabled: true, Amount: 6, Weekly: &DaySet{Days: []int{3}}}},
				Promo:      &PromoCode{Code: "WELCOME10", Type: PromoPercentage, Value: 10},
			},
			// (34 + 10 + 6) = 50 * 0.9 = 45
			wantTotal:   45,
			wantTier:    TierDefault,
			wantDetails: 4,
		},
		{
			name: "fixed promo floored at zero",
			in: FareInput{
				Route: &Route{DistanceKm: 3}, Vehicle: testVehicle(),
				PickupAt: afternoon, Now: now, Departure: louvre, Arrival: opera,
				Promo: &PromoCode{Code: "FREE", Type: PromoFixed, Value: 40},
			},
			wantTotal:     0,
			wantTier:      TierDefault,
			wantThreshold: true,
			wantDetails:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFare(tt.in)
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v (details %+v)", got.Total, tt.wantTotal, got.Details)
			}
			if got.Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", got.Tier, tt.wantTier)
			}
			if got.UsedKmThreshold != tt.wantThreshold {
				t.Errorf("UsedKmThreshold = %v, want %v", got.UsedKmThreshold, tt.wantThreshold)
			}
			if len(got.Details) != tt.wantDetails {
				t.Errorf("len(Details) = %d, want %d (%+v)", len(got.Details), tt.wantDetails, got.Details)
			}
		})
	}
}

func TestComputeFare_DetailsSumToTotal(t *testing.T) {
	in := FareInput{
		Route: &Route{DistanceKm: 20}, Vehicle: testVehicle(), Luggage: 4,
		PickupAt:   time.Date(2026, 3, 11, 23, 0, 0, 0, time.UTC),
		Now:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Departure:  louvre,
		Arrival:    opera,
		Surcharges: []Surcharge{{Name: "Night", Type: SurchargeHourly, Enabled: true, Amount: 12.5, Hourly: &HourWindow{StartHour: 21, EndHour: 5}}},
		Promo:      &PromoCode{Code: "MINUS5", Type: PromoFixed, Value: 5},
	}

	got := ComputeFare(in)

	var sum float64
	for _, d := range got.Details {
		sum += d.Amount
	}
	if types.RoundAmount(sum) != got.Total {
		t.Errorf("details sum %v != total %v (%+v)", sum, got.Total, got.Details)
	}
	last := got.Details[len(got.Details)-1]
	if last.Amount != -5 || got.PromoCode != "MINUS5" {
		t.Errorf("expected trailing promo line of -5, got %+v", last)
	}
}

func TestComputeFare_ZoneTier(t *testing.T) {
	priority := 2
	cityZone := zone.Zone{
		ID: "paris-centre", Name: "Paris centre", Enabled: true, Priority: &priority,
		Geography: zone.Geography{Type: zone.KindRadius, Radius: &zone.RadiusArea{Center: louvre.Point, RadiusKm: 8}},
		VehiclePricing: []zone.VehiclePricing{
			{VehicleID: "sedan", Enabled: true, Pricing: zone.Pricing{BasePrice: 8, PricePerKm: 1.5, PricePerMinute: 0.3, MinPrice: 20}},
		},
		Restrictions: zone.Restrictions{MinBookingHours: 48},
	}
	in := FareInput{
		Route: &Route{DistanceKm: 6, DurationSec: 1200}, Vehicle: testVehicle(),
		PickupAt:  time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC),
		Departure: louvre, Arrival: opera,
		Zones:     []zone.Zone{cityZone},
	}

	got := ComputeFare(in)

	// 8 + 6*1.5 + 20min*0.3 = 23
	if got.Total != 23 || got.Tier != TierZone || got.ZoneName != "Paris centre" {
		t.Errorf("got %+v, want zone fare 23 in Paris centre", got)
	}
	if got.Restriction == "" {
		t.Error("expected advisory restriction for short-notice booking")
	}
}

func TestComputeFare_RestrictionFromPricedZone(t *testing.T) {
	area := zone.Geography{Type: zone.KindRadius, Radius: &zone.RadiusArea{Center: louvre.Point, RadiusKm: 8}}
	priority := 2
	premium := zone.Zone{
		Name: "Premium", Enabled: true, Priority: &priority, Geography: area,
		VehiclePricing: []zone.VehiclePricing{{VehicleID: "sedan", Enabled: true, Pricing: zone.Pricing{BasePrice: 100}}},
		Restrictions:   zone.Restrictions{AllowedDays: []int{int(time.Monday)}},
	}
	standard := zone.Zone{
		Name: "Standard", Enabled: true, Geography: area,
		VehiclePricing: []zone.VehiclePricing{{VehicleID: "sedan", Enabled: true, Pricing: zone.Pricing{BasePrice: 20}}},
	}
	in := FareInput{
		Route: &Route{DistanceKm: 6}, Vehicle: testVehicle(),
		// Wednesday
		PickupAt:  time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		Departure: louvre, Arrival: opera,
		Zones:     []zone.Zone{premium, standard},
	}

	got := ComputeFare(in)

	if got.ZoneName != "Standard" || got.Total != 20 {
		t.Fatalf("got zone %q total %v, want Standard 20", got.ZoneName, got.Total)
	}
	if got.Restriction != "" {
		t.Errorf("Restriction = %q, want none from the unpriced Premium zone", got.Restriction)
	}
}

func TestComputeFare_ZoneWithoutVehicleFallsThrough(t *testing.T) {
	cityZone := zone.Zone{
		ID: "paris-centre", Name: "Paris centre", Enabled: true,
		Geography: zone.Geography{Type: zone.KindRadius, Radius: &zone.RadiusArea{Center: louvre.Point, RadiusKm: 8}},
		VehiclePricing: []zone.VehiclePricing{
			{VehicleID: "van", Enabled: true, Pricing: zone.Pricing{BasePrice: 80}},
			{VehicleID: "sedan", Enabled: true, UseDefaultPricing: true},
		},
	}
	in := FareInput{
		Route: &Route{DistanceKm: 10}, Vehicle: testVehicle(),
		PickupAt:  time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Departure: louvre, Arrival: opera,
		Zones:     []zone.Zone{cityZone},
	}

	got := ComputeFare(in)

	if got.Tier != TierDefault || got.Total != 22 || got.ZoneName != "" {
		t.Errorf("got %+v, want default fare 22", got)
	}
}

func TestComputeFare_Fallback(t *testing.T) {
	base := FareInput{
		Route: &Route{DistanceKm: 10}, Vehicle: testVehicle(),
		PickupAt:  time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Departure: louvre, Arrival: orly,
		BaseFee:   9.9,
		Currency:  "EUR",
	}

	tests := []struct {
		name   string
		mutate func(in *FareInput)
		reason string
	}{
		{name: "unknown vehicle", mutate: func(in *FareInput) { in.Vehicle = nil }, reason: reasonUnknownVehicle},
		{name: "missing pickup point", mutate: func(in *FareInput) { in.Departure.Point = types.Point{} }, reason: reasonInvalidCoordinates},
		{name: "dropoff out of range", mutate: func(in *FareInput) { in.Arrival.Point = types.Point{Lat: 120, Lng: 2} }, reason: reasonInvalidCoordinates},
		{name: "no route", mutate: func(in *FareInput) { in.Route = nil }, reason: reasonDistanceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			got := ComputeFare(in)
			if got.Total != 9.9 || got.Tier != TierFallback || got.FallbackReason != tt.reason {
				t.Errorf("got %+v, want base fee fallback (%s)", got, tt.reason)
			}
			if len(got.Details) != 1 || got.Details[0].Label != "Base fee" || got.Currency != "EUR" {
				t.Errorf("unexpected details %+v", got.Details)
			}
		})
	}
}

func TestComputeFare_Idempotent(t *testing.T) {
	in := FareInput{
		Route: &Route{DistanceKm: 12}, Vehicle: testVehicle(), Luggage: 3,
		PickupAt:  time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Departure: louvre, Arrival: opera,
	}
	a := ComputeFare(in)
	b := ComputeFare(in)
	if a.Total != b.Total || len(a.Details) != len(b.Details) {
		t.Fatalf("repeated calls differ: %+v vs %+v", a, b)
	}
	a.Details[0].Amount = -1
	if b.Details[0].Amount == -1 {
		t.Error("breakdowns share detail storage")
	}
}
