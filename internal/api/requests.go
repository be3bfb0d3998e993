// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package api

import (
	"time"

	"github.com/tomtom215/wayfinder/internal/feedback"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/weather"
)

// SelectRequest is the body of POST /api/v1/select.
type SelectRequest struct {
	// SessionID groups requests from one client. A newer request with the
	// same id cancels an older one still running.
	SessionID string `json:"session_id,omitempty" validate:"max=128"`

	// N is the number of results wanted. Zero uses the configured default.
	N int `json:"n" validate:"gte=0"`

	Spec *selection.ConstraintSpec `json:"spec" validate:"required"`

	// Pool is an optional caller-supplied pool searched before the catalog.
	Pool []selection.Candidate `json:"pool,omitempty" validate:"dive"`

	// Weather annotates pool candidates that carry no suitability score.
	Weather *weather.Conditions `json:"weather,omitempty"`

	// ShuffleSeed shuffles full ties reproducibly.
	ShuffleSeed *int64 `json:"shuffle_seed,omitempty"`
}

// CurateRequest is the body of POST /api/v1/curate.
type CurateRequest struct {
	SessionID string                    `json:"session_id,omitempty" validate:"max=128"`
	N         int                       `json:"n" validate:"gte=0"`
	Spec      *selection.ConstraintSpec `json:"spec,omitempty"`
	Pool      []selection.Candidate     `json:"pool,omitempty" validate:"dive"`
	Weather   *weather.Conditions       `json:"weather,omitempty"`

	// Semantic asks for the external curator, falling back when it is
	// disabled, unavailable or returns an invalid result.
	Semantic bool `json:"semantic"`
}

// CurateResponse is a curation result plus the selection it was built from.
type CurateResponse struct {
	selection.CurationResult

	SelectionRequestID  string   `json:"selection_request_id"`
	RelaxationSteps     []string `json:"relaxation_steps"`
	TotalCandidatesSeen int      `json:"total_candidates_seen"`
}

func newCurateResponse(c *selection.CurationResult, sel *selection.SelectionResult) *CurateResponse {
	return &CurateResponse{
		CurationResult:      *c,
		SelectionRequestID:  sel.RequestID,
		RelaxationSteps:     sel.RelaxationSteps,
		TotalCandidatesSeen: sel.TotalCandidatesSeen,
	}
}

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	CandidateID string `json:"candidate_id" validate:"required,max=128"`
	Vote        string `json:"vote" validate:"required"`
}

// FeedbackResponse reports a candidate's tally and what it does to ranking.
type FeedbackResponse struct {
	CandidateID  string    `json:"candidate_id"`
	Up           int       `json:"up"`
	Down         int       `json:"down"`
	Total        int       `json:"total"`
	ApprovalRate float64   `json:"approval_rate"`
	HasData      bool      `json:"has_data"`
	Excluded     bool      `json:"excluded"`
	Boosted      bool      `json:"boosted"`
	Multiplier   float64   `json:"multiplier"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func newFeedbackResponse(id string, t feedback.Tally) FeedbackResponse {
	return FeedbackResponse{
		CandidateID:  id,
		Up:           t.Up,
		Down:         t.Down,
		Total:        t.Total(),
		ApprovalRate: t.ApprovalRate(),
		HasData:      t.HasData(),
		Excluded:     t.ShouldAvoid(),
		Boosted:      t.ShouldBoost(),
		Multiplier:   t.Multiplier(),
		UpdatedAt:    t.UpdatedAt,
	}
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	Engine         selection.Stats `json:"engine"`
	ActiveSessions int             `json:"active_sessions"`
	UptimeSeconds  float64         `json:"uptime_seconds"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
}
