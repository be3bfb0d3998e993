// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: Active requests (gauge)

Selection Metrics:
  - selection_requests_total: Requests by outcome (full, short, not_found, cancelled, error)
  - selection_duration_seconds: Selection latency (histogram)
  - selection_diversity_score: Diversity score of completed selections (histogram)
  - selection_relaxation_steps_total: Relaxation steps applied, by step
  - selection_telemetry_events_total: Telemetry events, by stage
  - selection_upstream_failures_total: Degraded collaborator calls, by stage
  - selection_active_sessions / selection_superseded_requests_total

Curation Metrics:
  - curation_requests_total: Curations by source (semantic, fallback)
  - curation_fallbacks_total: Fallbacks by reason (disabled, unavailable, invalid)

Feedback and Catalog Metrics:
  - feedback_votes_total, feedback_lookups_total
  - catalog_query_duration_seconds, catalog_query_errors_total, catalog_candidates

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Labels: name, result
  - circuit_breaker_consecutive_failures
  - circuit_breaker_state_transitions_total
  - rate_limit_rejections_total
*/
package metrics
