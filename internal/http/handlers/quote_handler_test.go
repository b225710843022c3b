// README: Handler tests for quote and zone endpoints against in-memory collaborators.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/handlers"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/zone"
	"chauffeur/internal/types"
)

var (
	louvre = types.Point{Lat: 48.8606, Lng: 2.3376}
	opera  = types.Point{Lat: 48.8709, Lng: 2.3318}
)

type stubStore struct{}

func (stubStore) LoadWidget(_ context.Context, id string) (*pricing.Widget, error) {
	if id != "demo" {
		return nil, pricing.ErrWidgetNotFound
	}
	return &pricing.Widget{
		ID: "demo", BaseFee: 25, Currency: "EUR", Timezone: "Europe/Paris",
		Vehicles: []pricing.Vehicle{{
			ID:      "sedan",
			Pricing: pricing.VehiclePricing{BasePrice: 10, PerKm: 1.2, MinPrice: 15, KmThreshold: 5},
			Luggage: pricing.LuggagePolicy{Included: 2, Max: 4, PricePerExtra: 5},
		}},
		Zones: []zone.Zone{{
			ID: "centre", Name: "Paris centre", Enabled: true,
			Geography: zone.Geography{Type: zone.KindRadius, Radius: &zone.RadiusArea{Center: louvre, RadiusKm: 5}},
		}},
	}, nil
}

func (stubStore) FindPromo(context.Context, string, string, time.Time) (*pricing.PromoCode, error) {
	return nil, pricing.ErrPromoNotFound
}

type stubDistance struct{}

func (stubDistance) Distance(context.Context, types.Point, types.Point) (float64, float64, error) {
	return 10, 1500, nil
}

type stubCache struct {
	mu     sync.Mutex
	quotes map[string]pricing.Quote
}

func (s *stubCache) SaveQuote(_ context.Context, q *pricing.Quote, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = *q
	return nil
}

func (s *stubCache) GetQuote(_ context.Context, id string) (*pricing.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, pricing.ErrQuoteNotFound
	}
	return &q, nil
}

func (s *stubCache) GetRoute(context.Context, types.Point, types.Point) (*pricing.Route, error) {
	return nil, nil
}

func (s *stubCache) SaveRoute(context.Context, types.Point, types.Point, pricing.Route, time.Duration) error {
	return nil
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := pricing.NewService(stubStore{}, stubDistance{}, nil, &stubCache{quotes: map[string]pricing.Quote{}}, nil, pricing.Options{})
	r := gin.New()
	qh := handlers.NewQuoteHandler(svc, time.Second)
	zh := handlers.NewZoneHandler(svc)
	r.POST("/api/widgets/:widgetID/quotes", qh.Create)
	r.GET("/api/widgets/:widgetID/zones", zh.Lookup)
	r.GET("/api/quotes/:id", qh.Get)
	r.POST("/api/quotes/:id/verify", qh.Verify)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validQuoteBody() map[string]any {
	return map[string]any{
		"vehicleId": "sedan",
		"pickup":    map[string]any{"address": "Louvre", "lat": louvre.Lat, "lng": louvre.Lng},
		"dropoff":   map[string]any{"address": "Opéra", "lat": opera.Lat, "lng": opera.Lng},
		"date":      "2026-03-11",
		"time":      "12:00",
		"luggage":   3,
	}
}

func TestCreateQuote_ThenGetAndVerify(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodPost, "/api/widgets/demo/quotes", validQuoteBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var q pricing.Quote
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	// 10 + 10*1.2 + 1 extra bag * 5
	if q.Breakdown.Total != 27 || q.ID == "" {
		t.Fatalf("unexpected quote %+v", q)
	}

	if w := doRequest(r, http.MethodGet, "/api/quotes/"+q.ID, nil); w.Code != http.StatusOK {
		t.Errorf("GET quote: expected 200, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/quotes/"+q.ID+"/verify", map[string]any{"total": 20})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", w.Code)
	}
	var v pricing.Verification
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.Valid || v.Expected != 27 {
		t.Errorf("tampered total accepted: %+v", v)
	}
}

func TestCreateQuote_Errors(t *testing.T) {
	r := buildTestRouter()

	badDate := validQuoteBody()
	badDate["date"] = "11/03/2026"
	missing := validQuoteBody()
	delete(missing, "vehicleId")

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{name: "unknown widget", path: "/api/widgets/ghost/quotes", body: validQuoteBody(), want: http.StatusNotFound},
		{name: "invalid widget id", path: "/api/widgets/bad$id/quotes", body: validQuoteBody(), want: http.StatusBadRequest},
		{name: "invalid json", path: "/api/widgets/demo/quotes", body: "not an object", want: http.StatusBadRequest},
		{name: "missing vehicle", path: "/api/widgets/demo/quotes", body: missing, want: http.StatusBadRequest},
		{name: "bad date", path: "/api/widgets/demo/quotes", body: badDate, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(r, http.MethodPost, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetQuote_NotFound(t *testing.T) {
	r := buildTestRouter()
	if w := doRequest(r, http.MethodGet, "/api/quotes/3f1c2b9e-0000-4000-8000-000000000000", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestVerifyQuote_MissingTotal(t *testing.T) {
	r := buildTestRouter()
	if w := doRequest(r, http.MethodPost, "/api/quotes/abc/verify", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestZoneLookup(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodGet, "/api/widgets/demo/zones?lat=48.8606&lng=2.3376", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Zones []pricing.ZoneMatch `json:"zones"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Zones) != 1 || resp.Zones[0].ID != "centre" {
		t.Errorf("unexpected zones %+v", resp.Zones)
	}

	if w := doRequest(r, http.MethodGet, "/api/widgets/demo/zones?lat=abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
