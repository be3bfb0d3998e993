// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/wayfinder/internal/feedback"
	"github.com/tomtom215/wayfinder/internal/selection"
)

const maxCandidateIDLen = 128

// RecordFeedback stores a vote for a candidate.
//
// @Summary Record feedback
// @Description Stores an up or down vote. Three or more votes start to exclude or boost the candidate in selections.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body FeedbackRequest true "Vote"
// @Success 200 {object} FeedbackResponse
// @Failure 400 {object} ErrorEnvelope
// @Router /api/v1/feedback [post]
func (h *Handler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decodeJSON(w, r, &req, h.maxBodyBytes); err != nil {
		writeError(w, r, err)
		return
	}
	vote, err := feedback.ParseVote(req.Vote)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tally, err := h.feedback.Record(r.Context(), req.CandidateID, vote)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newFeedbackResponse(req.CandidateID, tally)
	respondJSON(w, r, http.StatusOK, &resp)
}

// GetFeedback returns the tally for a candidate.
//
// @Summary Get feedback for a candidate
// @Tags Feedback
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} FeedbackResponse
// @Failure 400 {object} ErrorEnvelope
// @Router /api/v1/feedback/{id} [get]
func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxCandidateIDLen {
		writeError(w, r, fmt.Errorf("%w: candidate id must be 1-%d characters", selection.ErrInvalidRequest, maxCandidateIDLen))
		return
	}

	tally, err := h.feedback.Tally(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newFeedbackResponse(id, tally)
	respondJSON(w, r, http.StatusOK, &resp)
}
