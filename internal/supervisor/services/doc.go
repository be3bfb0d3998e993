// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package services adapts Wayfinder's long-running components to the
// suture.Service interface: Serve blocks until its context is cancelled
// and returns an error when the component fails.
package services
