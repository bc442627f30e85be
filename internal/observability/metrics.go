package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trustlens/internal/types"
)

// Metrics tracks operational metrics for the scraping pipeline.
type Metrics struct {
	// FetchAttempts counts strategy attempts by strategy name and outcome.
	FetchAttempts *prometheus.CounterVec

	// AntiBotHits counts fetches that ran into an anti-bot challenge.
	AntiBotHits prometheus.Counter

	// Fallbacks counts scrapes resolved by synthesizing a placeholder.
	Fallbacks prometheus.Counter

	// ValidationRejects counts extracted records the validator rejected.
	ValidationRejects prometheus.Counter

	// ScrapeDuration observes end-to-end scrape latency in seconds.
	ScrapeDuration prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on reg. A nil reg gives metrics
// that collect into a throwaway registry, which tests and library callers use
// to avoid polluting the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustlens_fetch_attempts_total",
			Help: "Retrieval strategy attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		AntiBotHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_antibot_hits_total",
			Help: "Fetches blocked by an anti-bot challenge.",
		}),
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_fallbacks_total",
			Help: "Scrapes that returned a synthesized placeholder record.",
		}),
		ValidationRejects: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_validation_rejects_total",
			Help: "Extracted records rejected by the product validator.",
		}),
		ScrapeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustlens_scrape_duration_seconds",
			Help:    "End-to-end scrape latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// RecordAttempt counts one strategy attempt with its outcome.
func (m *Metrics) RecordAttempt(strategy string, outcome types.Outcome) {
	m.FetchAttempts.WithLabelValues(strategy, string(outcome)).Inc()
	if outcome == types.OutcomeAntiBot {
		m.AntiBotHits.Inc()
	}
}
