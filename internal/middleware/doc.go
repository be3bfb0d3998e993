// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it, together
    with a request-scoped zerolog logger, in the request context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    the chi route pattern rather than the raw path
  - AccessLog: one structured log line per request

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)

Labelling by route pattern keeps metric cardinality bounded: the
/api/v1/feedback/{id} route is one series no matter how many ids are
queried.
*/
package middleware
