// README: Advisory booking-window checks attached to a zone.
package zone

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Availability is advisory; a failing check never blocks a fare computation.
type Availability struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// IsBookingAllowed evaluates the zone restrictions for a pickup at pickupAt
// booked at now. The first failing rule is reported.
func IsBookingAllowed(now, pickupAt time.Time, z Zone) Availability {
	r := z.Restrictions

	if r.MinBookingHours > 0 && pickupAt.Sub(now).Hours() < r.MinBookingHours {
		return Availability{Reason: fmt.Sprintf("bookings in %s require %g hours notice", z.Name, r.MinBookingHours)}
	}

	if len(r.AllowedDays) > 0 && !containsDay(r.AllowedDays, pickupAt.Weekday()) {
		return Availability{Reason: fmt.Sprintf("%s is not served on %s", z.Name, pickupAt.Weekday())}
	}

	if r.DateRange != nil && !inDateRange(pickupAt, *r.DateRange) {
		return Availability{Reason: fmt.Sprintf("%s is only served from %s to %s", z.Name, r.DateRange.Start, r.DateRange.End)}
	}

	return Availability{Allowed: true}
}

func containsDay(days []int, d time.Weekday) bool {
	for _, v := range days {
		if time.Weekday(v) == d {
			return true
		}
	}
	return false
}

// inDateRange compares calendar dates in the pickup's own location. An
// unparsable bound is ignored.
func inDateRange(pickupAt time.Time, r DateRange) bool {
	day := pickupAt.Format(dateLayout)
	if _, err := time.Parse(dateLayout, r.Start); err == nil && day < r.Start {
		return false
	}
	if _, err := time.Parse(dateLayout, r.End); err == nil && day > r.End {
		return false
	}
	return true
}
