// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Selection Metrics
	SelectionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_requests_total",
			Help: "Total number of selection requests by outcome",
		},
		[]string{"outcome"}, // "full", "short", "not_found", "cancelled", "error"
	)

	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_duration_seconds",
			Help:    "Duration of selection requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SelectionDiversity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_diversity_score",
			Help:    "Diversity score of completed selections",
			Buckets: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
		},
	)

	RelaxationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_relaxation_steps_total",
			Help: "Total number of relaxation steps applied by step name",
		},
		[]string{"step"},
	)

	TelemetryEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_telemetry_events_total",
			Help: "Total number of selection telemetry events by stage",
		},
		[]string{"stage"},
	)

	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_upstream_failures_total",
			Help: "Total number of collaborator calls degraded to neutral defaults",
		},
		[]string{"stage"}, // "fetch", "feedback"
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "selection_active_sessions",
			Help: "Current number of sessions with an in-flight selection",
		},
	)

	SupersededRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "selection_superseded_requests_total",
			Help: "Total number of in-flight requests cancelled by a newer request",
		},
	)

	// Curation Metrics
	CurationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_requests_total",
			Help: "Total number of curation requests by source",
		},
		[]string{"source"}, // "semantic", "fallback"
	)

	CurationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_fallbacks_total",
			Help: "Total number of fallback curations by reason",
		},
		[]string{"reason"}, // "disabled", "unavailable", "invalid"
	)

	// Feedback Metrics
	FeedbackVotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_votes_total",
			Help: "Total number of feedback votes recorded",
		},
		[]string{"vote"},
	)

	FeedbackLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_lookups_total",
			Help: "Total number of feedback tally lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Catalog Metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of catalog query errors",
		},
		[]string{"operation"},
	)

	CatalogCandidates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_candidates",
			Help: "Number of candidates stored in the catalog",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of calls rejected by a client-side rate limiter",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSelection records the outcome of one selection request.
func RecordSelection(outcome string, duration time.Duration, diversity float64, steps []string) {
	SelectionRequests.WithLabelValues(outcome).Inc()
	SelectionDuration.Observe(duration.Seconds())
	if outcome == "full" || outcome == "short" {
		SelectionDiversity.Observe(diversity)
	}
	for _, step := range steps {
		RelaxationSteps.WithLabelValues(step).Inc()
	}
}

// RecordCuration records which source produced a curation and, for
// fallbacks, why.
func RecordCuration(fallback bool, reason string) {
	if !fallback {
		CurationRequests.WithLabelValues("semantic").Inc()
		return
	}
	CurationRequests.WithLabelValues("fallback").Inc()
	CurationFallbacks.WithLabelValues(reason).Inc()
}

// RecordCatalogQuery records a catalog query metric.
func RecordCatalogQuery(operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(operation).Inc()
	}
}
