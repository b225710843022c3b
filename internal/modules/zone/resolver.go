// README: Zone tariffs; prices a trip inside each zone and picks the cheapest.
package zone

import (
	"fmt"

	"chauffeur/internal/types"
)

// FareResult is the priced outcome of one zone for one vehicle.
type FareResult struct {
	ZoneID          string  `json:"zoneId"`
	ZoneName        string  `json:"zoneName"`
	Priority        int     `json:"priority"`
	BasePrice       float64 `json:"basePrice"`
	DistancePrice   float64 `json:"distancePrice"`
	TimePrice       float64 `json:"timePrice"`
	MinPriceApplied bool    `json:"minPriceApplied"`
	Total           float64 `json:"total"`
}

type RouteQuote struct {
	Available    bool         `json:"available"`
	Result       *FareResult  `json:"result,omitempty"`
	Alternatives []FareResult `json:"alternatives,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	// Zone is the zone Result was priced in.
	Zone *Zone `json:"-"`
}

// PriceInZone returns nil when the zone has no enabled tariff of its own for
// vehicleID; entries flagged useDefaultPricing defer to the next tier.
func PriceInZone(distanceKm, durationSec float64, vehicleID string, z Zone) *FareResult {
	vp, ok := z.vehicle(vehicleID)
	if !ok || !vp.Enabled || vp.UseDefaultPricing {
		return nil
	}
	p := vp.Pricing

	res := &FareResult{
		ZoneID:        z.ID,
		ZoneName:      z.Name,
		Priority:      z.EffectivePriority(),
		BasePrice:     types.RoundAmount(p.BasePrice),
		DistancePrice: types.RoundAmount(distanceKm * p.PricePerKm),
		TimePrice:     types.RoundAmount(durationSec / 60 * p.PricePerMinute),
	}

	total := p.BasePrice + distanceKm*p.PricePerKm + durationSec/60*p.PricePerMinute
	if p.MinPrice > 0 && total < p.MinPrice {
		total = p.MinPrice
		res.MinPriceApplied = true
	}
	res.Total = types.RoundAmount(total)
	return res
}

// BestPriceForRoute selects the cheapest zone tariff among the zones
// containing pickup. Equal totals resolve to the higher priority zone.
func BestPriceForRoute(pickup types.Point, distanceKm, durationSec float64, vehicleID string, zones []Zone) RouteQuote {
	containing := FindContainingZones(pickup, zones)
	if len(containing) == 0 {
		return RouteQuote{Reason: "pickup is outside every service zone"}
	}

	var candidates []FareResult
	var priced []Zone
	for _, z := range containing {
		if r := PriceInZone(distanceKm, durationSec, vehicleID, z); r != nil {
			candidates = append(candidates, *r)
			priced = append(priced, z)
		}
	}
	if len(candidates) == 0 {
		return RouteQuote{Reason: fmt.Sprintf("no zone containing the pickup prices vehicle %q", vehicleID)}
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Total < candidates[best].Total {
			best = i
		}
	}

	chosen := candidates[best]
	chosenZone := priced[best]
	var alternatives []FareResult
	for i, c := range candidates {
		if i != best {
			alternatives = append(alternatives, c)
		}
	}
	return RouteQuote{Available: true, Result: &chosen, Alternatives: alternatives, Zone: &chosenZone}
}
