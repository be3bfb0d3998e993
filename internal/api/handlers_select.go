// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/weather"
)

// Select runs a diverse top-N selection.
//
// @Summary Select diverse candidates
// @Description Filters, scores and picks N candidates across buckets, relaxing constraints until enough are found
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body SelectRequest true "Selection request"
// @Success 200 {object} selection.SelectionResult
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope "No candidate survived any relaxation pass"
// @Failure 503 {object} ErrorEnvelope
// @Router /api/v1/select [post]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(w, r, &req, h.maxBodyBytes); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.resolveN(req.N)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.checkPool(req.Pool); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, done := h.begin(r.Context(), req.SessionID)
	defer done()

	result, err := h.selectFor(ctx, r, req.Pool, req.Spec, n, req.Weather, req.ShuffleSeed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

// Curate selects N candidates and summarizes them for presentation.
//
// The pool and the catalog go through the same filters and relaxation as
// /select before curation, so hard-excluded candidates never reach the
// curator. A missing spec selects with no constraints.
//
// @Summary Select and curate candidates
// @Description Runs selection, then produces summaries and clusters, using the semantic curator when requested and valid
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body CurateRequest true "Curation request"
// @Success 200 {object} CurateResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Router /api/v1/curate [post]
func (h *Handler) Curate(w http.ResponseWriter, r *http.Request) {
	var req CurateRequest
	if err := decodeJSON(w, r, &req, h.maxBodyBytes); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.resolveN(req.N)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.checkPool(req.Pool); err != nil {
		writeError(w, r, err)
		return
	}

	spec := req.Spec
	if spec == nil {
		spec = &selection.ConstraintSpec{}
	}

	ctx, done := h.begin(r.Context(), req.SessionID)
	defer done()

	sel, err := h.selectFor(ctx, r, req.Pool, spec, n, req.Weather, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var result *selection.CurationResult
	if req.Semantic {
		result, err = h.curator.CurateWithSemantic(ctx, sel.Candidates, spec, n)
	} else {
		result, err = h.curator.Curate(ctx, sel.Candidates, n)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newCurateResponse(result, sel))
}

// selectFor annotates pool with weather when given and runs the selector.
func (h *Handler) selectFor(ctx context.Context, r *http.Request, pool []selection.Candidate, spec *selection.ConstraintSpec, n int, cond *weather.Conditions, seed *int64) (*selection.SelectionResult, error) {
	if cond != nil {
		g := weather.Analyze(*cond)
		pool = weather.Annotate(pool, g)
		logging.Ctx(r.Context()).Debug().
			Str("recommendation", string(g.Recommendation)).
			Msg(weather.Advice(g, *cond))
	}
	return h.selector.SelectWithOptions(ctx, pool, spec, n, selection.Options{
		RequestID:   logging.RequestIDFromContext(r.Context()),
		ShuffleSeed: seed,
	})
}

// Stats reports engine counters.
//
// @Summary Engine statistics
// @Tags Selection
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /api/v1/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Engine:        h.selector.Stats(),
		UptimeSeconds: timeSince(h.startTime),
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.Active()
	}
	respondJSON(w, r, http.StatusOK, &resp)
}

func (h *Handler) resolveN(n int) (int, error) {
	limits := h.selector.Config().Limits
	if n == 0 {
		return limits.DefaultN, nil
	}
	if n > limits.MaxN {
		return 0, fmt.Errorf("%w: n must be in [1, %d], got %d", selection.ErrInvalidRequest, limits.MaxN, n)
	}
	return n, nil
}

func (h *Handler) checkPool(pool []selection.Candidate) error {
	if maxPool := h.selector.Config().Limits.MaxPool; len(pool) > maxPool {
		return fmt.Errorf("%w: pool has %d candidates, limit is %d", selection.ErrInvalidRequest, len(pool), maxPool)
	}
	return nil
}
