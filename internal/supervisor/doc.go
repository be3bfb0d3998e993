// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package supervisor runs Wayfinder's long-lived services under a suture v4
supervisor tree.

	root ("wayfinder")
	├── events-layer
	│   └── EventRouterService (telemetry bus consumers)
	└── api-layer
	    └── HTTPServerService

A failing telemetry consumer is restarted without interrupting the HTTP
API, and the reverse. Supervisor events are logged through sutureslog,
bridged to zerolog by logging.NewSlogLogger.
*/
package supervisor
