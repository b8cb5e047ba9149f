package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts dialogue turns by response type
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybridge_agent_turns_total",
		Help: "Total dialogue turns by response type",
	}, []string{"type"})

	// ExtractionAttemptsTotal counts extractor calls by provider and outcome
	ExtractionAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybridge_extraction_attempts_total",
		Help: "Total extraction attempts by provider and outcome (ok, error, timeout)",
	}, []string{"provider", "outcome"})

	// ExtractionDuration observes the latency of a single extraction attempt
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skybridge_extraction_duration_seconds",
		Help:    "Latency of a single extraction attempt",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"provider"})

	// ConfirmedFillsTotal counts committed field sets by trip type
	ConfirmedFillsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybridge_confirmed_fills_total",
		Help: "Total confirmed form fills by trip type",
	}, []string{"trip_type"})

	// RateLimitedTotal counts requests rejected by the per-client limiter
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skybridge_rate_limited_total",
		Help: "Total requests rejected by the per-client rate limiter",
	})
)
