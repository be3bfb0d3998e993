// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package main is the entry point for the Wayfinder server.
//
// Wayfinder picks N diverse recommendations from a candidate catalog,
// relaxing distance, rating and travel-time constraints step by step when
// too few candidates survive filtering.
//
// # Startup Order
//
//  1. Configuration: defaults, then config.yaml, then environment (koanf)
//  2. Logging: global zerolog logger
//  3. Catalog: DuckDB, seeded from a JSON file when configured
//  4. Feedback: Badger vote store and the caching provider
//  5. Collaborators: guarded catalog, semantic curator client, telemetry bus
//  6. Engine, curator and HTTP router
//  7. Supervisor tree: the telemetry router and the HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the
// HTTP server, which drains in-flight requests for server.shutdown_timeout,
// and the telemetry router. The stores are closed after the tree returns.
//
// # Example Usage
//
//	export CATALOG_SEED_FILE=./testdata/lisbon.json
//	export LOG_FORMAT=console
//	./wayfinder
//
//	curl -s localhost:8080/api/v1/select -d '{"n": 5, "spec": {"region": "lisbon"}}'
package main
