// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/metrics"
)

// Dependencies are the optional collaborators of an Engine.
type Dependencies struct {
	// Source retrieves additional candidates on every pass. When nil only
	// the supplied pool is used.
	Source CandidateSource

	// Feedback supplies exclusion and multiplier signals. When nil every
	// candidate is not excluded with a multiplier of 1.0.
	Feedback FeedbackProvider

	// Sink receives telemetry events as they are emitted.
	Sink EventSink
}

// Options adjust a single Select call.
type Options struct {
	// RequestID is used for telemetry. A random id is generated if empty.
	RequestID string

	// ShuffleSeed, when set, shuffles candidates that tie on every
	// ranking key except id. Equal seeds give equal output.
	ShuffleSeed *int64
}

// Stats are engine-wide counters.
type Stats struct {
	Requests         int64 `json:"requests"`
	Relaxations      int64 `json:"relaxations"`
	NotFound         int64 `json:"not_found"`
	Cancelled        int64 `json:"cancelled"`
	UpstreamFailures int64 `json:"upstream_failures"`
	ShortResults     int64 `json:"short_results"`
}

// Engine runs diverse top-N selection with progressive relaxation.
type Engine struct {
	config *Config
	deps   Dependencies
	logger zerolog.Logger

	requests         atomic.Int64
	relaxations      atomic.Int64
	notFound         atomic.Int64
	cancelled        atomic.Int64
	upstreamFailures atomic.Int64
	shortResults     atomic.Int64
}

// NewEngine creates a selection engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		deps:   deps,
		logger: logger.With().Str("component", "selection").Logger(),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Select returns up to n diverse candidates from pool (plus the candidate
// source, when configured) that satisfy spec, relaxing soft constraints as
// needed. A short result is not an error; it sets InsufficientSupply. An
// empty result returns a *NotFoundError. A cancelled context returns
// ErrCancelled and no result.
func (e *Engine) Select(ctx context.Context, pool []Candidate, spec *ConstraintSpec, n int) (*SelectionResult, error) {
	return e.SelectWithOptions(ctx, pool, spec, n, Options{})
}

// SelectWithOptions is Select with per-call options.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) SelectWithOptions(ctx context.Context, pool []Candidate, spec *ConstraintSpec, n int, opts Options) (*SelectionResult, error) {
	start := time.Now()
	e.requests.Add(1)

	if spec == nil {
		return nil, fmt.Errorf("%w: spec is required", ErrInvalidRequest)
	}
	if n <= 0 || n > e.config.Limits.MaxN {
		return nil, fmt.Errorf("%w: n must be in [1, %d], got %d", ErrInvalidRequest, e.config.Limits.MaxN, n)
	}

	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := e.logger.With().Str("request_id", requestID).Int("n", n).Logger()

	var rng *rand.Rand
	if opts.ShuffleSeed != nil {
		rng = rand.New(rand.NewSource(*opts.ShuffleSeed)) //nolint:gosec // math/rand is fine for tie shuffling
	}

	rec := newRecorder(requestID, e.deps.Sink)
	ctrl := newController(e.config, &e.deps, logger, rec, rng, pool)

	out, err := ctrl.run(ctx, spec.Clone(), n)
	e.upstreamFailures.Add(int64(ctrl.upstreamFailures))
	e.relaxations.Add(int64(len(ctrl.steps)))
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrCancelled) {
			e.cancelled.Add(1)
			outcome = "cancelled"
			logger.Debug().Err(err).Msg("Selection cancelled")
		}
		metrics.RecordSelection(outcome, time.Since(start), 0, ctrl.steps)
		return nil, err
	}

	if len(out.selected) == 0 {
		e.notFound.Add(1)
		logger.Info().
			Str("region", spec.Region).
			Int("pool", len(ctrl.pool)).
			Strs("steps", ctrl.steps).
			Msg("No candidates survived any pass")
		metrics.RecordSelection("not_found", time.Since(start), 0, ctrl.steps)
		return nil, &NotFoundError{Region: spec.Region, Query: spec.Query}
	}

	result := &SelectionResult{
		RequestID:           requestID,
		IDs:                 make([]string, len(out.selected)),
		Candidates:          out.selected,
		DiversityScore:      DiversityScore(out.selected, out.eligible, n),
		BucketsRepresented:  distinctBuckets(out.selected),
		RelaxationSteps:     append([]string{}, ctrl.steps...),
		RelaxationCount:     len(ctrl.steps),
		TotalCandidatesSeen: len(ctrl.pool),
		CandidatesDropped:   ctrl.dropped,
		InsufficientSupply:  len(out.selected) < n,
		UpstreamFailures:    ctrl.upstreamFailures,
		Events:              rec.events,
	}
	for i := range out.selected {
		result.IDs[i] = out.selected[i].ID
	}
	outcome := "full"
	if result.InsufficientSupply {
		e.shortResults.Add(1)
		outcome = "short"
	}
	metrics.RecordSelection(outcome, time.Since(start), result.DiversityScore, result.RelaxationSteps)

	logger.Info().
		Int("selected", len(result.IDs)).
		Int("pool", result.TotalCandidatesSeen).
		Int("relaxations", result.RelaxationCount).
		Bool("insufficient_supply", result.InsufficientSupply).
		Float64("diversity", result.DiversityScore).
		Dur("latency", time.Since(start)).
		Msg("Selection complete")

	return result, nil
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:         e.requests.Load(),
		Relaxations:      e.relaxations.Load(),
		NotFound:         e.notFound.Load(),
		Cancelled:        e.cancelled.Load(),
		UpstreamFailures: e.upstreamFailures.Load(),
		ShortResults:     e.shortResults.Load(),
	}
}
