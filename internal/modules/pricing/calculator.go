// README: Fare calculator; composes package, zone and default tiers with
// luggage, surcharges and promo into one itemized breakdown.
package pricing

import (
	"fmt"

	"chauffeur/internal/modules/zone"
	"chauffeur/internal/types"
)

const (
	reasonUnknownVehicle      = "unknown vehicle"
	reasonInvalidCoordinates  = "pickup or dropoff coordinates missing"
	reasonDistanceUnavailable = "route distance unavailable"
)

// ComputeFare prices one trip. It never fails: when the inputs cannot be
// priced it returns the widget base fee with FallbackReason set. Every call
// returns a fresh breakdown.
func ComputeFare(in FareInput) FareBreakdown {
	if reason := fallbackReason(in); reason != "" {
		return baseFeeBreakdown(in, reason)
	}

	v := in.Vehicle
	out := FareBreakdown{Currency: in.Currency}
	var subtotal float64

	if pkg := MatchPackage(in.Departure.Address, in.Arrival.Address, v.ID, in.Packages); pkg != nil {
		subtotal = pkg.Price
		out.Tier = TierPackage
		out.AppliedPackage = &AppliedPackage{ID: pkg.ID, Name: pkg.Name}
		out.addDetail(packageLabel(pkg), pkg.Price)
	} else if rq := zone.BestPriceForRoute(in.Departure.Point, in.Route.DistanceKm, in.Route.DurationSec, v.ID, in.Zones); rq.Available {
		subtotal = rq.Result.Total
		out.Tier = TierZone
		out.ZoneName = rq.Result.ZoneName
		if a := zone.IsBookingAllowed(in.Now, in.PickupAt, *rq.Zone); !a.Allowed {
			out.Restriction = a.Reason
		}
		out.addDetail(fmt.Sprintf("%s fare (%.1f km)", rq.Result.ZoneName, in.Route.DistanceKm), subtotal)
	} else {
		var label string
		subtotal, out.UsedKmThreshold = defaultFare(in.Route.DistanceKm, v.Pricing)
		if out.UsedKmThreshold {
			label = fmt.Sprintf("Minimum fare (up to %g km)", v.Pricing.KmThreshold)
		} else {
			label = fmt.Sprintf("%s fare (%.1f km)", vehicleName(v), in.Route.DistanceKm)
		}
		out.Tier = TierDefault
		out.addDetail(label, subtotal)
	}

	lug := LuggageSupplement(in.Luggage, v.Luggage)
	out.Luggage = &lug
	if lug.Cost > 0 {
		subtotal += lug.Cost
		out.addDetail(fmt.Sprintf("Extra luggage x%d", lug.PayableCount), lug.Cost)
	}

	sur := ApplyTimeSurcharges(subtotal, in.PickupAt, in.Surcharges)
	subtotal = sur.Total
	for _, d := range sur.Details {
		out.addDetail(d.Label, d.Amount)
	}

	total := ApplyPromo(subtotal, in.Promo)
	if in.Promo != nil {
		out.PromoCode = in.Promo.Code
		out.addDetail(fmt.Sprintf("Promo %s", in.Promo.Code), total-subtotal)
	}

	out.Total = types.RoundAmount(total)
	return out
}

// defaultFare charges the vehicle minimum up to the km threshold and
// base + km × perKm beyond it.
func defaultFare(distanceKm float64, p VehiclePricing) (float64, bool) {
	if distanceKm <= p.KmThreshold {
		return p.MinPrice, true
	}
	return p.BasePrice + distanceKm*p.PerKm, false
}

func fallbackReason(in FareInput) string {
	switch {
	case in.Vehicle == nil:
		return reasonUnknownVehicle
	case !in.Departure.Point.Valid() || !in.Arrival.Point.Valid():
		return reasonInvalidCoordinates
	case in.Route == nil || in.Route.DistanceKm < 0:
		return reasonDistanceUnavailable
	default:
		return ""
	}
}

func baseFeeBreakdown(in FareInput, reason string) FareBreakdown {
	out := FareBreakdown{
		Total:          types.RoundAmount(in.BaseFee),
		Currency:       in.Currency,
		Tier:           TierFallback,
		FallbackReason: reason,
	}
	out.addDetail("Base fee", in.BaseFee)
	return out
}

// addDetail appends a rounded line, skipping zero contributions.
func (b *FareBreakdown) addDetail(label string, amount float64) {
	amount = types.RoundAmount(amount)
	if amount == 0 {
		return
	}
	b.Details = append(b.Details, Detail{Label: label, Amount: amount})
}

func packageLabel(p *Package) string {
	if p.Name != "" {
		return p.Name
	}
	return "Flat-rate package"
}

func vehicleName(v *Vehicle) string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}
