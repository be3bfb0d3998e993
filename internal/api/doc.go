// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package api exposes the selection engine, the curator and the feedback
store over HTTP.

Routes:

	POST /api/v1/select          diverse top-N selection with relaxation
	POST /api/v1/curate          selection followed by summarized, validated curation
	POST /api/v1/feedback        record an up or down vote for a candidate
	GET  /api/v1/feedback/{id}   tally and score multiplier for a candidate
	GET  /api/v1/stats           engine counters and active sessions
	GET  /api/v1/health/live     liveness
	GET  /api/v1/health/ready    readiness of the catalog, feedback store and breakers
	GET  /metrics                Prometheus exposition

Request bodies are decoded strictly: unknown fields and oversized bodies
are rejected before validation runs. Every error uses the same envelope:

	{"error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}}

A selection whose context is cancelled, either because the client went
away or because a newer request for the same session superseded it,
answers 499 with an empty body.

Middleware order, outermost first: request ID, real IP, access log,
Prometheus metrics, panic recovery, CORS, then per-group rate limiting on
the mutating endpoints.
*/
package api
