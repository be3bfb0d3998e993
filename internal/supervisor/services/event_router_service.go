// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is the part of events.Bus the service drives.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the telemetry bus consumers under a supervisor.
// A Watermill router cannot be restarted once it has stopped, so an
// unexpected stop is reported with suture.ErrDoNotRestart.
type EventRouterService struct {
	router EventRouter
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router}
}

// Serve implements suture.Service.
func (e *EventRouterService) Serve(ctx context.Context) error {
	err := e.router.Run(ctx)
	if ctx.Err() != nil {
		if cerr := e.router.Close(); cerr != nil {
			return errors.Join(ctx.Err(), cerr)
		}
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("stopped unexpectedly")
	}
	return fmt.Errorf("%w: event router: %w", suture.ErrDoNotRestart, err)
}

func (e *EventRouterService) String() string { return "event-router" }
