// README: Flat-rate package detection from departure/arrival address text.
package pricing

import "strings"

// MatchPackage returns the first enabled package, in list order, whose
// departure and arrival keywords match the addresses and whose vehicle
// list admits vehicleID. Empty keyword or vehicle lists match anything.
func MatchPackage(departure, arrival, vehicleID string, packages []Package) *Package {
	for _, p := range packages {
		if !p.Enabled {
			continue
		}
		if !keywordsMatch(p.DepartureZones, departure) || !keywordsMatch(p.ArrivalZones, arrival) {
			continue
		}
		if !vehicleAllowed(p.VehicleTypes, vehicleID) {
			continue
		}
		match := p
		return &match
	}
	return nil
}

func keywordsMatch(keywords []string, address string) bool {
	if len(keywords) == 0 {
		return true
	}
	addr := strings.ToLower(address)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(addr, kw) {
			return true
		}
	}
	return false
}

func vehicleAllowed(vehicleTypes []string, vehicleID string) bool {
	if len(vehicleTypes) == 0 {
		return true
	}
	for _, v := range vehicleTypes {
		if strings.EqualFold(v, vehicleID) {
			return true
		}
	}
	return false
}
