// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts widget slugs and UUIDs: letters, digits, '-' and '_'.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePricingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrWidgetNotFound), errors.Is(err, pricing.ErrQuoteNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
