// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no candidate survives any pass.
	ErrNotFound = errors.New("no candidates found")

	// ErrInvalidCuration marks an external curation result that failed
	// validation.
	ErrInvalidCuration = errors.New("invalid curation")

	// ErrUpstreamUnavailable marks a collaborator call that failed or
	// timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCancelled is returned when a request was superseded or its
	// context ended before completion.
	ErrCancelled = errors.New("selection cancelled")

	// ErrInvalidRequest marks malformed input.
	ErrInvalidRequest = errors.New("invalid request")
)

// NotFoundError names the region and query that produced no candidates.
type NotFoundError struct {
	Region string
	Query  string
}

func (e *NotFoundError) Error() string {
	region := e.Region
	if region == "" {
		region = "any region"
	}
	if e.Query != "" {
		return fmt.Sprintf("no candidates found in %s for %q", region, e.Query)
	}
	return fmt.Sprintf("no candidates found in %s", region)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidCurationError lists why a curation result was rejected.
type InvalidCurationError struct {
	Reasons []string
}

func (e *InvalidCurationError) Error() string {
	return "invalid curation: " + strings.Join(e.Reasons, "; ")
}

// Unwrap lets errors.Is match ErrInvalidCuration.
func (e *InvalidCurationError) Unwrap() error { return ErrInvalidCuration }
