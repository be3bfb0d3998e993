// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/resilience"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// GuardConfig configures a Guarded source.
type GuardConfig struct {
	Name      string
	Breaker   resilience.BreakerConfig
	PerSecond float64
	Burst     int
}

// Guarded puts a CandidateSource behind a circuit breaker and a
// non-blocking rate limiter. Rejections and source failures are returned
// wrapped in selection.ErrUpstreamUnavailable; cancellation of the
// caller's context is passed through unchanged.
type Guarded struct {
	source  selection.CandidateSource
	breaker *resilience.Breaker[[]selection.Candidate]
	limiter *resilience.Limiter
}

var _ selection.CandidateSource = (*Guarded)(nil)

// NewGuarded wraps source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGuarded(source selection.CandidateSource, cfg GuardConfig, logger zerolog.Logger) *Guarded {
	if cfg.Name == "" {
		cfg.Name = "catalog"
	}
	return &Guarded{
		source:  source,
		breaker: resilience.NewBreaker[[]selection.Candidate](cfg.Name, cfg.Breaker, logger),
		limiter: resilience.NewLimiter(cfg.Name, cfg.PerSecond, cfg.Burst),
	}
}

// FetchCandidates calls the wrapped source if the limiter and breaker allow.
func (g *Guarded) FetchCandidates(ctx context.Context, spec *selection.ConstraintSpec) ([]selection.Candidate, error) {
	if err := g.limiter.Allow(); err != nil {
		return nil, fmt.Errorf("%w: %w", selection.ErrUpstreamUnavailable, err)
	}
	cands, err := g.breaker.Execute(func() ([]selection.Candidate, error) {
		return g.source.FetchCandidates(ctx, spec)
	})
	if err == nil {
		return cands, nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", selection.ErrUpstreamUnavailable, err)
}

// BreakerState returns the breaker state for health reporting.
func (g *Guarded) BreakerState() string { return g.breaker.State() }
