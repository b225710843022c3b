// README: Time-of-day / day-of-week surcharges and luggage overage.
package pricing

import (
	"fmt"
	"time"
)

type SurchargeResult struct {
	// Added is the sum of every matching surcharge; Total is base + Added.
	Added   float64
	Total   float64
	Details []Detail
}

// ApplyTimeSurcharges adds every enabled surcharge matching pickupAt, read in
// its own location. Surcharges stack.
func ApplyTimeSurcharges(base float64, pickupAt time.Time, surcharges []Surcharge) SurchargeResult {
	res := SurchargeResult{Total: base}
	for _, s := range surcharges {
		if !s.Enabled || !surchargeMatches(s, pickupAt) {
			continue
		}
		res.Added += s.Amount
		res.Details = append(res.Details, Detail{Label: surchargeLabel(s), Amount: s.Amount})
	}
	res.Total = base + res.Added
	return res
}

func surchargeMatches(s Surcharge, at time.Time) bool {
	switch s.Type {
	case SurchargeHourly:
		if s.Hourly == nil {
			return false
		}
		return inHourWindow(at.Hour(), s.Hourly.StartHour, s.Hourly.EndHour)
	case SurchargeWeekly:
		if s.Weekly == nil {
			return false
		}
		for _, d := range s.Weekly.Days {
			if time.Weekday(d) == at.Weekday() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// inHourWindow tests hour against [start, end). start > end wraps past
// midnight (22→6 covers 22..23 and 0..5); start == end is empty.
func inHourWindow(hour, start, end int) bool {
	switch {
	case start < end:
		return hour >= start && hour < end
	case start > end:
		return hour >= start || hour < end
	default:
		return false
	}
}

func surchargeLabel(s Surcharge) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Type == SurchargeHourly && s.Hourly != nil {
		return fmt.Sprintf("Surcharge %02d:00-%02d:00", s.Hourly.StartHour, s.Hourly.EndHour)
	}
	return "Day surcharge"
}

type LuggageResult struct {
	PayableCount int     `json:"payableCount"`
	Cost         float64 `json:"cost"`
	// OverCapacity is reported for the caller to act on; the cost is still computed.
	OverCapacity bool `json:"overCapacity"`
}

// LuggageSupplement charges for bags beyond the included allowance, capped at
// the vehicle maximum.
func LuggageSupplement(total int, policy LuggagePolicy) LuggageResult {
	if total < 0 {
		total = 0
	}
	payable := min(total, policy.Max) - policy.Included
	if payable < 0 {
		payable = 0
	}
	return LuggageResult{
		PayableCount: payable,
		Cost:         float64(payable) * policy.PricePerExtra,
		OverCapacity: total > policy.Max,
	}
}
