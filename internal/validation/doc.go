// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is built on first use with
WithRequiredStructEnabled. It reports fields by their json names and adds a
"bucket" rule for selection buckets.

Example:

	type feedbackRequest struct {
	    CandidateID string `json:"candidate_id" validate:"required,max=128"`
	    Vote        string `json:"vote" validate:"required,oneof=up down"`
	}

	if err := validation.ValidateStruct(&req); err != nil {
	    // err wraps selection.ErrInvalidRequest
	}

Failures are returned as *RequestValidationError, whose Details method
produces the map placed in the API error envelope.
*/
package validation
