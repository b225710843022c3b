// README: Prometheus metrics for quote computation.
package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chauffeur",
		Subsystem: "pricing",
		Name:      "quotes_total",
		Help:      "Quotes computed, by pricing tier",
	}, []string{"tier"})

	quoteAmount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chauffeur",
		Subsystem: "pricing",
		Name:      "quote_total_amount",
		Help:      "Quoted fare totals",
		Buckets:   []float64{10, 20, 35, 50, 75, 100, 150, 250, 500},
	}, []string{"currency"})

	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chauffeur",
		Subsystem: "pricing",
		Name:      "verifications_total",
		Help:      "Quote price verifications, by result",
	}, []string{"result"})

	upstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chauffeur",
		Subsystem: "pricing",
		Name:      "upstream_errors_total",
		Help:      "Failed calls to map providers",
	}, []string{"provider"})
)
