// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package curation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// Fallback reasons.
const (
	ReasonDisabled    = "disabled"
	ReasonUnavailable = "unavailable"
	ReasonInvalid     = "invalid"
)

// SemanticCurator is an external, typically LLM-backed, curator.
type SemanticCurator interface {
	Curate(ctx context.Context, pool []selection.Candidate, spec *selection.ConstraintSpec, n int) (*selection.CurationResult, error)
}

// Curator produces curation results, preferring a semantic curator when
// one is configured and its output validates.
type Curator struct {
	semantic SemanticCurator
	sink     selection.EventSink
	logger   zerolog.Logger
}

// NewCurator creates a curator. semantic and sink may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCurator(semantic SemanticCurator, sink selection.EventSink, logger zerolog.Logger) *Curator {
	return &Curator{
		semantic: semantic,
		sink:     sink,
		logger:   logger.With().Str("component", "curation").Logger(),
	}
}

// Curate runs the deterministic fallback curator. It returns exactly
// min(n, distinct ids in pool) items, so duplicate ids count once;
// InsufficientSupply is set when that is less than n. An empty pool returns a *selection.NotFoundError.
func (c *Curator) Curate(ctx context.Context, pool []selection.Candidate, n int) (*selection.CurationResult, error) {
	if err := c.check(ctx, pool, n, nil); err != nil {
		return nil, err
	}
	result := Fallback(pool, n)
	metrics.RecordCuration(true, ReasonDisabled)
	c.emit(len(pool), len(result.IDs), ReasonDisabled)
	return result, nil
}

// CurateWithSemantic asks the semantic curator first. Its result is used
// only if it validates against pool; otherwise, or when the curator is
// absent or fails, the fallback result is returned with Fallback set.
// Invalid semantic output is logged and never surfaced as an error.
func (c *Curator) CurateWithSemantic(ctx context.Context, pool []selection.Candidate, spec *selection.ConstraintSpec, n int) (*selection.CurationResult, error) {
	if err := c.check(ctx, pool, n, spec); err != nil {
		return nil, err
	}

	reason := ReasonDisabled
	if c.semantic != nil {
		start := time.Now()
		result, err := c.semantic.Curate(ctx, pool, spec, n)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", selection.ErrCancelled, ctxErr)
		}

		switch {
		case err != nil:
			reason = ReasonUnavailable
			c.logger.Warn().Err(err).Dur("latency", time.Since(start)).Msg("Semantic curator unavailable, using fallback")
		default:
			var targets []selection.Bucket
			if spec != nil {
				targets = spec.Buckets
			}
			report := Validate(result, pool, n, targets)
			if verr := report.Err(); verr != nil {
				reason = ReasonInvalid
				ev := c.logger.Warn().Err(verr)
				if result != nil {
					ev = ev.Strs("ids", result.IDs)
				}
				ev.Msg("Semantic curation failed validation, using fallback")
				break
			}
			for _, w := range report.Warnings {
				c.logger.Debug().Str("warning", w).Msg("Semantic curation warning")
			}
			result.DiversityScore = report.DiversityScore
			result.BucketsRepresented = report.BucketsRepresented
			result.InsufficientSupply = len(result.IDs) < n
			result.Fallback = false
			metrics.RecordCuration(false, "")
			c.emitSemantic(len(pool), len(result.IDs))
			return result, nil
		}
	}

	fallback := Fallback(pool, n)
	fallback.FallbackReason = reason
	metrics.RecordCuration(true, reason)
	c.emit(len(pool), len(fallback.IDs), reason)
	return fallback, nil
}

func (c *Curator) check(ctx context.Context, pool []selection.Candidate, n int, spec *selection.ConstraintSpec) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", selection.ErrCancelled, err)
	}
	if n <= 0 {
		return fmt.Errorf("%w: n must be positive, got %d", selection.ErrInvalidRequest, n)
	}
	if len(pool) == 0 {
		nf := &selection.NotFoundError{}
		if spec != nil {
			nf.Region, nf.Query = spec.Region, spec.Query
		}
		return nf
	}
	return nil
}

func (c *Curator) emit(in, out int, reason string) {
	if c.sink == nil {
		return
	}
	c.sink.Emit(selection.Event{
		Stage: selection.StageCurate, State: selection.StateFallback,
		CountIn: in, CountOut: out, Detail: reason, At: time.Now(),
	})
}

func (c *Curator) emitSemantic(in, out int) {
	if c.sink == nil {
		return
	}
	c.sink.Emit(selection.Event{
		Stage: selection.StageCurate, State: selection.StateDone,
		CountIn: in, CountOut: out, Detail: "semantic", At: time.Now(),
	})
}
