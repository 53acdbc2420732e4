// Package metrics provides Prometheus metrics for the studio site backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "studio"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Slug metrics
var (
	// SlugSuffixAttempts observes how many candidates were tried before a free slug was found.
	SlugSuffixAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "resolve_attempts",
			Help:      "Number of slug candidates checked per resolution",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 100, 1000},
		},
	)

	// SlugConflictsTotal counts unique-index violations raced past the pre-check.
	SlugConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "conflicts_total",
			Help:      "Slug unique constraint violations retried at write time",
		},
	)
)

// Cache metrics
var (
	CacheResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "results_total",
			Help:      "Cache lookups by outcome (hit, miss, stale)",
		},
		[]string{"result"},
	)

	CacheWarmRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "warm_runs_total",
			Help:      "Scheduled cache refreshes by outcome",
		},
		[]string{"result"},
	)

	CacheInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Keys removed by prefix invalidation",
		},
	)
)

// Contact metrics
var (
	EnquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "enquiries_total",
			Help:      "Contact form submissions by outcome",
		},
		[]string{"result"},
	)
)
