// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/validation"
)

// StatusClientClosedRequest is the non-standard status for a request whose
// client went away or was superseded.
const StatusClientClosedRequest = 499

// Error codes used in the envelope.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeNotFound         = "NOT_FOUND"
	CodeUpstream         = "UPSTREAM_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMITED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

var errBodyTooLarge = errors.New("request body too large")

// ErrorBody is the payload of the error envelope.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	respondJSON(w, r, status, &ErrorEnvelope{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// writeError maps err onto a status and error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, r, http.StatusBadRequest, CodeValidation, verr.Error(), verr.Details())
	case errors.Is(err, selection.ErrCancelled), errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request cancelled")
		w.WriteHeader(StatusClientClosedRequest)
	case errors.Is(err, errBodyTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, CodeTooLarge, err.Error(), nil)
	case errors.Is(err, selection.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, selection.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
	case errors.Is(err, selection.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Upstream unavailable")
		respondError(w, r, http.StatusServiceUnavailable, CodeUpstream, "a dependency is unavailable, retry later", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unhandled API error")
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}

// decodeJSON reads at most limit bytes, rejects unknown fields and runs
// struct validation on dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: reading body: %v", selection.ErrInvalidRequest, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: request body is empty", selection.ErrInvalidRequest)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", selection.ErrInvalidRequest, err)
	}
	return validation.ValidateStruct(dst)
}
