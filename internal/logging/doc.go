// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package logging configures the process-wide zerolog logger used by every
// Wayfinder component.
//
// Components receive a zerolog.Logger at construction and derive a child
// with a "component" field. HTTP handlers read the request-scoped logger
// from the context with Ctx, which carries the request ID assigned by the
// API middleware.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	log := logging.WithComponent("catalog")
//	log.Info().Int("candidates", n).Msg("Catalog loaded")
//
// Libraries that only accept *slog.Logger, such as the suture supervisor's
// event hook, are bridged with NewSlogLogger.
package logging
