// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/wayfinder/internal/selection"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}

type voteRequest struct {
	CandidateID string `json:"candidate_id" validate:"required,max=8"`
	Vote        string `json:"vote" validate:"required,oneof=up down"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     voteRequest
		wantField string
		wantMsg   string
	}{
		{"valid", voteRequest{CandidateID: "abc", Vote: "up"}, "", ""},
		{"missing id", voteRequest{Vote: "down"}, "candidate_id", "candidate_id is required"},
		{"bad vote", voteRequest{CandidateID: "abc", Vote: "maybe"}, "vote", "vote must be one of: up down"},
		{"long id", voteRequest{CandidateID: "123456789", Vote: "up"}, "candidate_id", "at most 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *RequestValidationError", err)
			}
			if !errors.Is(err, selection.ErrInvalidRequest) {
				t.Error("error does not wrap ErrInvalidRequest")
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.wantField {
				t.Fatalf("fields = %+v, want %s", verr.Fields, tt.wantField)
			}
			if !strings.Contains(verr.Fields[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", verr.Fields[0].Message, tt.wantMsg)
			}
			if verr.Details()["field"] != tt.wantField {
				t.Errorf("Details = %v", verr.Details())
			}
		})
	}
}

func TestValidateStruct_Candidate(t *testing.T) {
	t.Parallel()

	good := selection.Candidate{ID: "m1", Bucket: selection.BucketArt, Rating: selection.Float(4)}
	if err := ValidateStruct(&good); err != nil {
		t.Fatalf("valid candidate rejected: %v", err)
	}

	bad := selection.Candidate{ID: "m2", Bucket: "spaceflight", Rating: selection.Float(7)}
	err := ValidateStruct(&bad)

	var verr *RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *RequestValidationError", err)
	}
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Tag
	}
	if fields["bucket"] != "bucket" || fields["rating"] != "lte" {
		t.Errorf("fields = %v, want bucket and rating failures", fields)
	}
	if _, ok := verr.Details()["fields"]; !ok {
		t.Errorf("Details = %v, want fields list", verr.Details())
	}
}

func TestValidateStruct_SpecBuckets(t *testing.T) {
	t.Parallel()

	spec := selection.ConstraintSpec{Buckets: []selection.Bucket{selection.BucketNature, "moon"}}
	err := ValidateStruct(&spec)

	var verr *RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *RequestValidationError", err)
	}
	if verr.Fields[0].Field != "buckets[1]" {
		t.Errorf("field = %s, want buckets[1]", verr.Fields[0].Field)
	}
}
