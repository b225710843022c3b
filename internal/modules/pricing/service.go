// README: Pricing service; loads widget configuration, resolves the route,
// computes the fare and keeps the quote for later verification.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chauffeur/internal/modules/zone"
	"chauffeur/internal/types"
)

var (
	ErrBadRequest     = errors.New("bad request")
	ErrWidgetNotFound = errors.New("widget not found")
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrPromoNotFound  = errors.New("promo code not found")
)

const (
	dateTimeLayout  = "2006-01-02 15:04"
	verifyTolerance = 0.01
)

// ConfigStore serves operator configuration.
type ConfigStore interface {
	LoadWidget(ctx context.Context, widgetID string) (*Widget, error)
	FindPromo(ctx context.Context, widgetID, code string, at time.Time) (*PromoCode, error)
}

// DistanceProvider reports the driving distance and duration between two points.
type DistanceProvider interface {
	Distance(ctx context.Context, from, to types.Point) (distanceKm, durationSec float64, err error)
}

// AddressResolver turns free text into coordinates.
type AddressResolver interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// QuoteCache keeps quotes and route lookups for a limited time. GetRoute
// returns nil, nil on a miss.
type QuoteCache interface {
	SaveQuote(ctx context.Context, q *Quote, ttl time.Duration) error
	GetQuote(ctx context.Context, id string) (*Quote, error)
	GetRoute(ctx context.Context, from, to types.Point) (*Route, error)
	SaveRoute(ctx context.Context, from, to types.Point, r Route, ttl time.Duration) error
}

type Options struct {
	QuoteTTL        time.Duration
	RouteTTL        time.Duration
	DefaultTimezone string
	DefaultCurrency string
}

type Service struct {
	store    ConfigStore
	distance DistanceProvider
	geocoder AddressResolver
	cache    QuoteCache
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// NewService wires the pricing service. distance, geocoder and cache may be
// nil; quotes then fall back to the base fee or are not kept.
func NewService(store ConfigStore, distance DistanceProvider, geocoder AddressResolver, cache QuoteCache, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = 15 * time.Minute
	}
	if opts.RouteTTL <= 0 {
		opts.RouteTTL = time.Hour
	}
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = "UTC"
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "EUR"
	}
	return &Service{
		store:    store,
		distance: distance,
		geocoder: geocoder,
		cache:    cache,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Stop is a pickup or dropoff as posted by the widget. Point is optional
// when Address can be geocoded.
type Stop struct {
	Address string       `json:"address"`
	Point   *types.Point `json:"point,omitempty"`
}

type QuoteRequest struct {
	WidgetID  string
	VehicleID string
	Pickup    Stop
	Dropoff   Stop
	Date      string // 2006-01-02, widget local time
	Time      string // 15:04, widget local time
	Luggage   int
	PromoCode string
}

func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.WidgetID == "" || req.VehicleID == "" || req.Luggage < 0 {
		return nil, ErrBadRequest
	}

	w, err := s.store.LoadWidget(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}

	loc := s.location(w)
	pickupAt, err := time.ParseInLocation(dateTimeLayout, req.Date+" "+req.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup date/time: %v", ErrBadRequest, err)
	}

	now := s.now().In(loc)
	q := &Quote{
		ID:        uuid.NewString(),
		WidgetID:  w.ID,
		VehicleID: req.VehicleID,
		PickupAt:  pickupAt,
	}
	q.Pickup = s.resolveStop(ctx, req.Pickup)
	q.Dropoff = s.resolveStop(ctx, req.Dropoff)
	q.Route = s.route(ctx, q.Pickup.Point, q.Dropoff.Point)

	var promo *PromoCode
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		promo, err = s.store.FindPromo(ctx, w.ID, code, now)
		switch {
		case errors.Is(err, ErrPromoNotFound):
			q.Warnings = append(q.Warnings, fmt.Sprintf("promo code %q is not valid", code))
		case err != nil:
			s.logger.Warn("promo lookup failed", zap.String("widget_id", w.ID), zap.Error(err))
			q.Warnings = append(q.Warnings, "promo code could not be checked")
		}
	}

	currency := w.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	q.Breakdown = ComputeFare(FareInput{
		Route:      q.Route,
		Vehicle:    w.Vehicle(req.VehicleID),
		PickupAt:   pickupAt,
		Now:        now,
		Luggage:    req.Luggage,
		Departure:  q.Pickup,
		Arrival:    q.Dropoff,
		Surcharges: w.Surcharges,
		Packages:   w.Packages,
		Zones:      w.Zones,
		Promo:      promo,
		BaseFee:    w.BaseFee,
		Currency:   currency,
	})
	if q.Breakdown.Luggage != nil && q.Breakdown.Luggage.OverCapacity {
		q.Warnings = append(q.Warnings, "luggage exceeds vehicle capacity")
	}
	if q.Breakdown.Restriction != "" {
		q.Warnings = append(q.Warnings, q.Breakdown.Restriction)
	}

	q.CreatedAt = now
	q.ExpiresAt = now.Add(s.opts.QuoteTTL)

	quotesTotal.WithLabelValues(string(q.Breakdown.Tier)).Inc()
	quoteAmount.WithLabelValues(currency).Observe(q.Breakdown.Total)

	if s.cache != nil {
		if err := s.cache.SaveQuote(ctx, q, s.opts.QuoteTTL); err != nil {
			s.logger.Warn("quote not cached", zap.String("quote_id", q.ID), zap.Error(err))
		}
	}

	s.logger.Info("quote computed",
		zap.String("quote_id", q.ID),
		zap.String("widget_id", w.ID),
		zap.String("vehicle_id", req.VehicleID),
		zap.String("tier", string(q.Breakdown.Tier)),
		zap.Float64("total", q.Breakdown.Total),
		zap.String("fallback_reason", q.Breakdown.FallbackReason),
	)
	return q, nil
}

func (s *Service) GetQuote(ctx context.Context, id string) (*Quote, error) {
	if s.cache == nil {
		return nil, ErrQuoteNotFound
	}
	return s.cache.GetQuote(ctx, id)
}

type Verification struct {
	QuoteID  string  `json:"quoteId"`
	Valid    bool    `json:"valid"`
	Expected float64 `json:"expected"`
	Claimed  float64 `json:"claimed"`
}

// VerifyQuote checks a price submitted with a booking against the stored
// quote, within one cent.
func (s *Service) VerifyQuote(ctx context.Context, id string, claimed float64) (Verification, error) {
	q, err := s.GetQuote(ctx, id)
	if err != nil {
		return Verification{}, err
	}
	v := Verification{
		QuoteID:  q.ID,
		Expected: q.Breakdown.Total,
		Claimed:  claimed,
		Valid:    math.Abs(claimed-q.Breakdown.Total) <= verifyTolerance+1e-9,
	}
	result := "match"
	if !v.Valid {
		result = "mismatch"
		s.logger.Warn("quote price mismatch",
			zap.String("quote_id", id),
			zap.Float64("expected", v.Expected),
			zap.Float64("claimed", claimed),
		)
	}
	verificationsTotal.WithLabelValues(result).Inc()
	return v, nil
}

type ZoneMatch struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Priority     int                `json:"priority"`
	AreaKm2      float64            `json:"areaKm2"`
	Availability *zone.Availability `json:"availability,omitempty"`
}

// LookupZones lists the widget zones containing p, highest priority first.
// Availability is filled when a pickup date and time are given.
func (s *Service) LookupZones(ctx context.Context, widgetID string, p types.Point, date, clock string) ([]ZoneMatch, error) {
	if widgetID == "" || !p.Valid() {
		return nil, ErrBadRequest
	}
	w, err := s.store.LoadWidget(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	loc := s.location(w)
	var pickupAt *time.Time
	if date != "" {
		if clock == "" {
			clock = "00:00"
		}
		t, err := time.ParseInLocation(dateTimeLayout, date+" "+clock, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: pickup date/time: %v", ErrBadRequest, err)
		}
		pickupAt = &t
	}

	matches := []ZoneMatch{}
	for _, z := range zone.FindContainingZones(p, w.Zones) {
		m := ZoneMatch{
			ID:       z.ID,
			Name:     z.Name,
			Priority: z.EffectivePriority(),
			AreaKm2:  types.RoundAmount(zone.Area(z)),
		}
		if pickupAt != nil {
			a := zone.IsBookingAllowed(s.now().In(loc), *pickupAt, z)
			m.Availability = &a
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *Service) location(w *Widget) *time.Location {
	name := w.Timezone
	if name == "" {
		name = s.opts.DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		s.logger.Warn("unknown widget timezone, using UTC", zap.String("widget_id", w.ID), zap.String("timezone", name))
		return time.UTC
	}
	return loc
}

func (s *Service) resolveStop(ctx context.Context, st Stop) Location {
	loc := Location{Address: st.Address}
	if st.Point != nil && st.Point.Valid() {
		loc.Point = *st.Point
		return loc
	}
	if st.Address == "" || s.geocoder == nil {
		return loc
	}
	p, err := s.geocoder.Geocode(ctx, st.Address)
	if err != nil {
		upstreamErrors.WithLabelValues("geocoding").Inc()
		s.logger.Warn("geocoding failed", zap.String("address", st.Address), zap.Error(err))
		return loc
	}
	loc.Point = p
	return loc
}

// route returns nil when no distance is available; the fare then falls back
// to the base fee.
func (s *Service) route(ctx context.Context, from, to types.Point) *Route {
	if !from.Valid() || !to.Valid() {
		return nil
	}
	if s.cache != nil {
		if r, err := s.cache.GetRoute(ctx, from, to); err != nil {
			s.logger.Debug("route cache read failed", zap.Error(err))
		} else if r != nil {
			return r
		}
	}
	if s.distance == nil {
		return nil
	}

	km, sec, err := s.distance.Distance(ctx, from, to)
	if err != nil {
		upstreamErrors.WithLabelValues("directions").Inc()
		s.logger.Warn("distance lookup failed", zap.Error(err))
		return nil
	}
	r := Route{DistanceKm: km, DurationSec: sec}
	if s.cache != nil {
		if err := s.cache.SaveRoute(ctx, from, to, r, s.opts.RouteTTL); err != nil {
			s.logger.Debug("route not cached", zap.Error(err))
		}
	}
	return &r
}
