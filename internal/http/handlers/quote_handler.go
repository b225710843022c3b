// README: Quote handlers for create/get/verify.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
	timeout time.Duration
}

// NewQuoteHandler bounds each quote computation, map lookups included, by timeout.
func NewQuoteHandler(svc *pricing.Service, timeout time.Duration) *QuoteHandler {
	return &QuoteHandler{pricing: svc, timeout: timeout}
}

type stopReq struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

func (s stopReq) toStop() pricing.Stop {
	st := pricing.Stop{Address: s.Address}
	if s.Lat != nil && s.Lng != nil {
		st.Point = &types.Point{Lat: *s.Lat, Lng: *s.Lng}
	}
	return st
}

type createQuoteReq struct {
	VehicleID string  `json:"vehicleId"`
	Pickup    stopReq `json:"pickup"`
	Dropoff   stopReq `json:"dropoff"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Luggage   int     `json:"luggage"`
	PromoCode string  `json:"promoCode"`
}

func (h *QuoteHandler) Create(c *gin.Context) {
	widgetID := c.Param("widgetID")
	if !isValidID(widgetID) {
		writeError(c, http.StatusBadRequest, "invalid widget id")
		return
	}
	var req createQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VehicleID == "" || req.Date == "" || req.Time == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	q, err := h.pricing.Quote(ctx, pricing.QuoteRequest{
		WidgetID:  widgetID,
		VehicleID: req.VehicleID,
		Pickup:    req.Pickup.toStop(),
		Dropoff:   req.Dropoff.toStop(),
		Date:      req.Date,
		Time:      req.Time,
		Luggage:   req.Luggage,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, q)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.pricing.GetQuote(c.Request.Context(), id)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

type verifyQuoteReq struct {
	Total *float64 `json:"total"`
}

func (h *QuoteHandler) Verify(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	var req verifyQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Total == nil {
		writeError(c, http.StatusBadRequest, "missing total")
		return
	}
	v, err := h.pricing.VerifyQuote(c.Request.Context(), id, *req.Total)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *QuoteHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}
