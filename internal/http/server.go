// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chauffeur/internal/http/handlers"
	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/pricing"
)

type ServerDeps struct {
	Pricing     *pricing.Service
	Logger      *zap.Logger
	RateLimiter *middleware.IPRateLimiter
	// QuoteTimeout bounds a quote request, map lookups included.
	QuoteTimeout time.Duration
}

type Server struct {
	pricing      *pricing.Service
	logger       *zap.Logger
	limiter      *middleware.IPRateLimiter
	quoteTimeout time.Duration
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pricing:      deps.Pricing,
		logger:       logger,
		limiter:      deps.RateLimiter,
		quoteTimeout: deps.QuoteTimeout,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.logger), middleware.Logging(s.logger), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	quotes := handlers.NewQuoteHandler(s.pricing, s.quoteTimeout)
	zones := handlers.NewZoneHandler(s.pricing)

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(middleware.RateLimit(s.limiter))
	}
	api.POST("/widgets/:widgetID/quotes", quotes.Create)
	api.GET("/widgets/:widgetID/zones", zones.Lookup)
	api.GET("/quotes/:id", quotes.Get)
	api.POST("/quotes/:id/verify", quotes.Verify)
	return r
}
