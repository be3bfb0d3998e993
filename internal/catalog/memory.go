// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package catalog provides candidate sources for the selection engine: a
// DuckDB-backed store, a static in-memory source, JSON seed loading, and a
// guard that puts any source behind a circuit breaker and rate limiter.
//
// Sources apply the spec's region, distance, rating, travel-time and bucket
// predicates so that widened constraints on later passes return more
// candidates. Hard filters and scoring remain the engine's job.
package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/tomtom215/wayfinder/internal/selection"
)

// MemorySource serves a fixed candidate slice.
type MemorySource struct {
	candidates []selection.Candidate
}

var _ selection.CandidateSource = (*MemorySource)(nil)

// NewMemorySource copies candidates into a new source.
func NewMemorySource(candidates []selection.Candidate) *MemorySource {
	return &MemorySource{candidates: slices.Clone(candidates)}
}

// FetchCandidates returns the candidates matching spec, in id order.
func (m *MemorySource) FetchCandidates(ctx context.Context, spec *selection.ConstraintSpec) ([]selection.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]selection.Candidate, 0, len(m.candidates))
	for i := range m.candidates {
		if Matches(spec, &m.candidates[i]) {
			out = append(out, m.candidates[i])
		}
	}
	slices.SortFunc(out, func(a, b selection.Candidate) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Len returns the number of candidates held.
func (m *MemorySource) Len() int { return len(m.candidates) }

// Matches applies the source-side predicates. Unknown candidate values
// pass, as do all candidates for a nil spec. A local search (region set,
// search-everywhere unset or false) keeps only candidates in that region
// or with no region.
func Matches(spec *selection.ConstraintSpec, c *selection.Candidate) bool {
	if spec == nil {
		return true
	}
	if !spec.Everywhere() && spec.Region != "" && c.Region != "" && !strings.EqualFold(spec.Region, c.Region) {
		return false
	}
	if spec.DistanceLimitKM != nil && c.DistanceKM != nil && *c.DistanceKM > *spec.DistanceLimitKM {
		return false
	}
	if spec.MinRating != nil && c.Rating != nil && *c.Rating < *spec.MinRating {
		return false
	}
	if spec.MaxTravelMinutes != nil && c.TravelMinutes != nil && *c.TravelMinutes > *spec.MaxTravelMinutes {
		return false
	}
	if len(spec.Buckets) > 0 && !slices.Contains(spec.Buckets, c.Bucket) {
		return false
	}
	return true
}
