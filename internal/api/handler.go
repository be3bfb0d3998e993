// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/feedback"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 4 << 20

// Selector runs selections. *selection.Engine implements it.
type Selector interface {
	Config() *selection.Config
	SelectWithOptions(ctx context.Context, pool []selection.Candidate, spec *selection.ConstraintSpec, n int, opts selection.Options) (*selection.SelectionResult, error)
	Stats() selection.Stats
}

// Curator produces curation results. *curation.Curator implements it.
type Curator interface {
	Curate(ctx context.Context, pool []selection.Candidate, n int) (*selection.CurationResult, error)
	CurateWithSemantic(ctx context.Context, pool []selection.Candidate, spec *selection.ConstraintSpec, n int) (*selection.CurationResult, error)
}

// FeedbackService records and reads votes. *feedback.Provider implements it.
type FeedbackService interface {
	Record(ctx context.Context, candidateID string, vote feedback.Vote) (feedback.Tally, error)
	Tally(ctx context.Context, candidateID string) (feedback.Tally, error)
}

// Sessions scopes a request to a client session so a newer request
// cancels an older one. *session.Registry implements it.
type Sessions interface {
	Begin(parent context.Context, sessionID string) (context.Context, func())
	Active() int
}

// ReadinessCheck is one named dependency probe for /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies wires a Handler. Selector and Curator are required.
type Dependencies struct {
	Selector Selector
	Curator  Curator

	// Feedback enables the feedback routes when set.
	Feedback FeedbackService

	// Sessions enables superseding by session_id when set.
	Sessions Sessions

	Checks       []ReadinessCheck
	MaxBodyBytes int64
}

// Handler serves the HTTP API.
type Handler struct {
	selector     Selector
	curator      Curator
	feedback     FeedbackService
	sessions     Sessions
	checks       []ReadinessCheck
	maxBodyBytes int64
	startTime    time.Time
	logger       zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(deps Dependencies, logger zerolog.Logger) (*Handler, error) {
	if deps.Selector == nil {
		return nil, errors.New("api: selector is required")
	}
	if deps.Curator == nil {
		return nil, errors.New("api: curator is required")
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{
		selector:     deps.Selector,
		curator:      deps.Curator,
		feedback:     deps.Feedback,
		sessions:     deps.Sessions,
		checks:       deps.Checks,
		maxBodyBytes: maxBody,
		startTime:    time.Now(),
		logger:       logger.With().Str("component", "api").Logger(),
	}, nil
}

// begin scopes ctx to sessionID when session tracking is enabled.
func (h *Handler) begin(ctx context.Context, sessionID string) (context.Context, func()) {
	if h.sessions == nil {
		return ctx, func() {}
	}
	return h.sessions.Begin(ctx, sessionID)
}
