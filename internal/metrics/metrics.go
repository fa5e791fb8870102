// Package metrics exposes the ledger's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tradeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_trade_total",
			Help: "Total number of trades by kind and final status",
		},
		[]string{"kind", "status"},
	)

	quoteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_oracle_quote_total",
			Help: "Total number of quotes fetched from the provider by source (live or fallback)",
		},
		[]string{"source"},
	)

	cacheHitTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_oracle_cache_hit_total",
			Help: "Total number of quotes served from the price cache",
		},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation", "outcome"},
	)
)

// RecordTrade counts a trade that reached a terminal status.
func RecordTrade(kind, status string) {
	tradeTotal.WithLabelValues(kind, status).Inc()
}

// RecordQuote counts a provider fetch by price source.
func RecordQuote(source string) {
	quoteTotal.WithLabelValues(source).Inc()
}

// RecordCacheHit counts a quote served from cache.
func RecordCacheHit() {
	cacheHitTotal.Inc()
}

// ObserveOperation records how long a ledger operation took.
func ObserveOperation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
