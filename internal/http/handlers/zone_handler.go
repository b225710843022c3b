// README: Zone lookup handler for the widget and operator dashboard.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type ZoneHandler struct {
	pricing *pricing.Service
}

func NewZoneHandler(svc *pricing.Service) *ZoneHandler {
	return &ZoneHandler{pricing: svc}
}

// Lookup serves GET /api/widgets/:widgetID/zones?lat=&lng=[&date=&time=].
func (h *ZoneHandler) Lookup(c *gin.Context) {
	widgetID := c.Param("widgetID")
	if !isValidID(widgetID) {
		writeError(c, http.StatusBadRequest, "invalid widget id")
		return
	}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}

	zones, err := h.pricing.LookupZones(c.Request.Context(), widgetID, types.Point{Lat: lat, Lng: lng}, c.Query("date"), c.Query("time"))
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"zones": zones})
}
