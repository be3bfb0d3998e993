// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package resilience

import (
	"errors"

	"golang.org/x/time/rate"

	"github.com/tomtom215/wayfinder/internal/metrics"
)

// ErrRateLimited is returned when a limiter has no token available.
var ErrRateLimited = errors.New("rate limited")

// Limiter is a non-blocking token bucket for outbound calls.
type Limiter struct {
	name string
	lim  *rate.Limiter
}

// NewLimiter allows perSecond calls with the given burst. perSecond <= 0
// disables limiting.
func NewLimiter(name string, perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{name: name, lim: rate.NewLimiter(limit, burst)}
}

// Allow consumes a token or returns ErrRateLimited.
func (l *Limiter) Allow() error {
	if l == nil || l.lim.Allow() {
		return nil
	}
	metrics.RateLimitRejections.WithLabelValues(l.name).Inc()
	return ErrRateLimited
}
