// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package feedback turns historical thumbs-up/thumbs-down outcomes into the
// exclusion and multiplier signals consumed by the selection engine.
//
// Tallies are persisted in BadgerDB (BadgerStore) and served through a
// cached, concurrency-bounded Provider that implements
// selection.FeedbackProvider.
package feedback

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/wayfinder/internal/selection"
)

// Vote is a single outcome for a candidate.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// ParseVote accepts "up" and "down", case-insensitively.
func ParseVote(s string) (Vote, error) {
	switch v := Vote(strings.ToLower(strings.TrimSpace(s))); v {
	case VoteUp, VoteDown:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown vote %q", selection.ErrInvalidRequest, s)
	}
}

// Rule thresholds and multipliers.
const (
	MinRatings         = 3
	AvoidRejectionRate = 80.0
	BoostApprovalRate  = 70.0

	AvoidMultiplier   = 0.3
	BoostMultiplier   = 1.8
	NeutralMultiplier = 1.0
)

// Tally is the accumulated feedback for one candidate.
type Tally struct {
	CandidateID string    `json:"candidate_id"`
	Up          int       `json:"up"`
	Down        int       `json:"down"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Total returns the number of ratings.
func (t Tally) Total() int { return t.Up + t.Down }

// ApprovalRate returns up/(up+down) as a percentage rounded to one
// decimal place, or 0 with no ratings.
func (t Tally) ApprovalRate() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return math.Round(float64(t.Up)/float64(total)*1000) / 10
}

// HasData reports whether enough ratings exist for the rules to apply.
func (t Tally) HasData() bool { return t.Total() >= MinRatings }

// ShouldAvoid reports a consistently rejected candidate.
func (t Tally) ShouldAvoid() bool {
	return t.HasData() && 100-t.ApprovalRate() >= AvoidRejectionRate
}

// ShouldBoost reports a consistently approved candidate.
func (t Tally) ShouldBoost() bool {
	return t.HasData() && t.ApprovalRate() >= BoostApprovalRate
}

// Multiplier maps the tally to a score multiplier:
//
//	no data        -> 1.0
//	avoid          -> 0.3
//	boost          -> 1.8
//	approval < 50  -> 0.5 + a/100
//	approval < 70  -> 1.0 + (a-50)/100
func (t Tally) Multiplier() float64 {
	if !t.HasData() {
		return NeutralMultiplier
	}
	if t.ShouldAvoid() {
		return AvoidMultiplier
	}
	if t.ShouldBoost() {
		return BoostMultiplier
	}
	a := t.ApprovalRate()
	switch {
	case a < 50:
		return 0.5 + a/100
	case a < BoostApprovalRate:
		return 1.0 + (a-50)/100
	default:
		return 1.5
	}
}

// apply returns the tally with v counted.
func (t Tally) apply(v Vote, at time.Time) Tally {
	switch v {
	case VoteUp:
		t.Up++
	case VoteDown:
		t.Down++
	}
	t.UpdatedAt = at
	return t
}
