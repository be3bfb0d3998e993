// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package curation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/selection"
)

func item(id string, bucket selection.Bucket, rating, weather float64) selection.Candidate {
	return selection.Candidate{
		ID:                 id,
		Name:               "Place " + id,
		Bucket:             bucket,
		Rating:             selection.Float(rating),
		WeatherSuitability: selection.Float(weather),
	}
}

func testPool() []selection.Candidate {
	return []selection.Candidate{
		item("a1", selection.BucketArt, 4.9, 1.0),
		item("a2", selection.BucketArt, 4.8, 1.0),
		item("c1", selection.BucketCulture, 4.0, 0.5),
		item("n1", selection.BucketNature, 3.5, 0.9),
		item("n2", selection.BucketNature, 3.0, 0.2),
		item("s1", selection.BucketSocial, 2.0, 1.0),
		item("w1", selection.BucketWellness, 4.2, 0.6),
	}
}

type mockSemantic struct {
	result *selection.CurationResult
	err    error
	calls  int
}

func (m *mockSemantic) Curate(_ context.Context, _ []selection.Candidate, _ *selection.ConstraintSpec, _ int) (*selection.CurationResult, error) {
	m.calls++
	return m.result, m.err
}

type countingSink struct{ events []selection.Event }

func (s *countingSink) Emit(ev selection.Event) { s.events = append(s.events, ev) }

func TestFallbackScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    selection.Candidate
		want float64
	}{
		{"both set", item("x", selection.BucketArt, 4.0, 0.5), 0.7*4.0 + 0.3*0.5},
		{"missing rating", selection.Candidate{ID: "y", WeatherSuitability: selection.Float(1)}, 0.3},
		{"missing weather", selection.Candidate{ID: "z", Rating: selection.Float(5)}, 0.7*5 + 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FallbackScore(&tt.c); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FallbackScore = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestFallback_BucketFirstThenFill(t *testing.T) {
	t.Parallel()

	res := Fallback(testPool(), 5)

	want := []string{"a1", "w1", "c1", "n1", "s1"}
	if fmt.Sprint(res.IDs) != fmt.Sprint(want) {
		t.Errorf("IDs = %v, want %v", res.IDs, want)
	}
	if res.InsufficientSupply {
		t.Error("InsufficientSupply set for a full result")
	}
	if !res.Fallback || res.Reasoning != FallbackReasoning {
		t.Errorf("Fallback = %v, Reasoning = %q", res.Fallback, res.Reasoning)
	}
	if len(res.Summaries) != 5 {
		t.Fatalf("summaries = %d, want 5", len(res.Summaries))
	}
	for i, s := range res.Summaries {
		if s.ID != res.IDs[i] {
			t.Errorf("summary %d id = %s, want %s", i, s.ID, res.IDs[i])
		}
	}
	if len(res.Clusters) != 1 || res.Clusters[0].Label != FallbackClusterLabel {
		t.Errorf("clusters = %+v", res.Clusters)
	}
	if res.DiversityScore != 1 {
		t.Errorf("DiversityScore = %f, want 1", res.DiversityScore)
	}
}

func TestFallback_ExactlyMinNPool(t *testing.T) {
	t.Parallel()

	pool := testPool()
	for _, n := range []int{1, 3, 7, 10} {
		res := Fallback(pool, n)
		want := min(n, len(pool))
		if len(res.IDs) != want {
			t.Errorf("n=%d: len = %d, want %d", n, len(res.IDs), want)
		}
		if res.InsufficientSupply != (want < n) {
			t.Errorf("n=%d: InsufficientSupply = %v", n, res.InsufficientSupply)
		}
		members := map[string]bool{}
		for _, c := range pool {
			members[c.ID] = true
		}
		for _, id := range res.IDs {
			if !members[id] {
				t.Errorf("n=%d: id %s not in pool", n, id)
			}
		}
	}
}

func TestFallback_DuplicatePoolIDs(t *testing.T) {
	t.Parallel()

	pool := append(testPool(), item("a1", selection.BucketArt, 4.9, 1.0))
	res := Fallback(pool, 10)
	if len(res.IDs) != 7 {
		t.Errorf("len = %d, want 7 unique ids", len(res.IDs))
	}
	if !res.InsufficientSupply {
		t.Error("InsufficientSupply = false with 7 distinct ids for n=10")
	}
	if rep := Validate(res, pool, 10, nil); len(rep.Errors) != 0 {
		t.Errorf("Validate errors = %v, want none for a count of distinct ids", rep.Errors)
	}
}

func TestHighlights(t *testing.T) {
	t.Parallel()

	c := selection.Candidate{
		ID:                 "x",
		Rating:             selection.Float(4.5),
		DistanceKM:         selection.Float(1.2),
		WeatherSuitability: selection.Float(0.81),
	}
	got := Highlights(&c)
	want := []string{HighlightHighlyRated, HighlightNearby, HighlightWeatherSuitable}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Highlights = %v, want %v", got, want)
	}

	plain := selection.Candidate{ID: "y", Rating: selection.Float(4.4), DistanceKM: selection.Float(2), WeatherSuitability: selection.Float(0.8)}
	if got := Highlights(&plain); len(got) != 0 {
		t.Errorf("Highlights(plain) = %v, want none", got)
	}
}

func TestBlurb(t *testing.T) {
	t.Parallel()

	c := selection.Candidate{Name: "Harbour Walk", Rating: selection.Float(4.6), Description: strings.Repeat("x", 100)}
	b := Blurb(&c)
	if !strings.HasPrefix(b, "Harbour Walk offers an excellent experience with 4.6 rating. ") {
		t.Errorf("Blurb prefix = %q", b)
	}
	if strings.Contains(b, strings.Repeat("x", 61)) {
		t.Error("description not truncated to 60 characters")
	}

	unrated := selection.Candidate{Name: "Old Mill"}
	if got := Blurb(&unrated); !strings.Contains(got, "with good rating") || !strings.Contains(got, "A great choice for your adventure.") {
		t.Errorf("Blurb(unrated) = %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	pool := testPool()

	tests := []struct {
		name      string
		result    *selection.CurationResult
		n         int
		wantValid bool
	}{
		{
			name:      "valid",
			result:    &selection.CurationResult{IDs: []string{"a1", "c1", "n1"}},
			n:         3,
			wantValid: true,
		},
		{
			name:   "wrong count",
			result: &selection.CurationResult{IDs: []string{"a1", "c1"}},
			n:      3,
		},
		{
			name:   "unknown id",
			result: &selection.CurationResult{IDs: []string{"a1", "c1", "ghost"}},
			n:      3,
		},
		{
			name:   "duplicate id",
			result: &selection.CurationResult{IDs: []string{"a1", "a1", "c1"}},
			n:      3,
		},
		{
			name: "summary mismatch",
			result: &selection.CurationResult{
				IDs:       []string{"a1", "c1", "n1"},
				Summaries: []selection.Summary{{ID: "a1"}, {ID: "c1"}, {ID: "s1"}},
			},
			n: 3,
		},
		{
			name: "cluster outside selection",
			result: &selection.CurationResult{
				IDs:      []string{"a1", "c1", "n1"},
				Clusters: []selection.Cluster{{Label: "x", IDs: []string{"w1"}}},
			},
			n: 3,
		},
		{
			name:   "nil result",
			result: nil,
			n:      3,
		},
		{
			name:      "short pool expects pool size",
			result:    &selection.CurationResult{IDs: []string{"a1", "a2", "c1", "n1", "n2", "s1", "w1"}},
			n:         10,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rep := Validate(tt.result, pool, tt.n, nil)
			if rep.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %v)", rep.Valid, tt.wantValid, rep.Errors)
			}
			if err := rep.Err(); (err != nil) == tt.wantValid {
				t.Errorf("Err() = %v", err)
			} else if err != nil && !errors.Is(err, selection.ErrInvalidCuration) {
				t.Errorf("Err() = %v, want ErrInvalidCuration", err)
			}
		})
	}
}

func TestValidate_DiversityWarnings(t *testing.T) {
	t.Parallel()

	result := &selection.CurationResult{IDs: []string{"a1", "a2"}}
	rep := Validate(result, testPool(), 2, []selection.Bucket{selection.BucketArt, selection.BucketNature})
	if !rep.Valid {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	if len(rep.MissingBuckets) != 1 || rep.MissingBuckets[0] != selection.BucketNature {
		t.Errorf("MissingBuckets = %v, want [nature]", rep.MissingBuckets)
	}
	if len(rep.Warnings) != 2 {
		t.Errorf("Warnings = %v, want low diversity and missing buckets", rep.Warnings)
	}
}

func TestCurator_ScenarioD_InvalidSemanticReplaced(t *testing.T) {
	t.Parallel()

	pool := testPool()[:5]
	sem := &mockSemantic{result: &selection.CurationResult{IDs: []string{"a1", "a2", "c1", "n1", "not-in-pool"}}}
	sink := &countingSink{}
	c := NewCurator(sem, sink, zerolog.Nop())

	res, err := c.CurateWithSemantic(context.Background(), pool, &selection.ConstraintSpec{}, 5)
	if err != nil {
		t.Fatalf("CurateWithSemantic: %v", err)
	}
	if !res.Fallback || res.FallbackReason != ReasonInvalid {
		t.Errorf("Fallback = %v reason = %q, want invalid fallback", res.Fallback, res.FallbackReason)
	}
	if rep := Validate(res, pool, 5, nil); !rep.Valid {
		t.Errorf("fallback result invalid: %v", rep.Errors)
	}
	for _, id := range res.IDs {
		if id == "not-in-pool" {
			t.Error("unknown id passed through")
		}
	}
	if len(sink.events) != 1 || sink.events[0].State != selection.StateFallback {
		t.Errorf("events = %+v, want one fallback event", sink.events)
	}
}

func TestCurator_ValidSemanticUsed(t *testing.T) {
	t.Parallel()

	pool := testPool()
	sem := &mockSemantic{result: &selection.CurationResult{
		IDs:       []string{"n2", "s1"},
		Summaries: []selection.Summary{{ID: "n2", Blurb: "b"}, {ID: "s1", Blurb: "c"}},
		Reasoning: "llm",
	}}
	c := NewCurator(sem, nil, zerolog.Nop())

	res, err := c.CurateWithSemantic(context.Background(), pool, nil, 2)
	if err != nil {
		t.Fatalf("CurateWithSemantic: %v", err)
	}
	if res.Fallback {
		t.Errorf("valid semantic result replaced: %+v", res)
	}
	if fmt.Sprint(res.IDs) != "[n2 s1]" {
		t.Errorf("IDs = %v", res.IDs)
	}
	if res.DiversityScore != 1 {
		t.Errorf("DiversityScore = %f, want 1", res.DiversityScore)
	}
}

func TestCurator_SemanticErrorFallsBack(t *testing.T) {
	t.Parallel()

	sem := &mockSemantic{err: errors.New("timeout")}
	c := NewCurator(sem, nil, zerolog.Nop())

	res, err := c.CurateWithSemantic(context.Background(), testPool(), nil, 3)
	if err != nil {
		t.Fatalf("CurateWithSemantic: %v", err)
	}
	if !res.Fallback || res.FallbackReason != ReasonUnavailable {
		t.Errorf("Fallback = %v reason = %q", res.Fallback, res.FallbackReason)
	}
	if len(res.IDs) != 3 {
		t.Errorf("len = %d, want 3", len(res.IDs))
	}
}

func TestCurator_NilSemanticResultFallsBack(t *testing.T) {
	t.Parallel()

	c := NewCurator(&mockSemantic{}, nil, zerolog.Nop())
	res, err := c.CurateWithSemantic(context.Background(), testPool(), nil, 3)
	if err != nil {
		t.Fatalf("CurateWithSemantic: %v", err)
	}
	if res.FallbackReason != ReasonInvalid {
		t.Errorf("FallbackReason = %q, want %q", res.FallbackReason, ReasonInvalid)
	}
}

func TestCurator_Errors(t *testing.T) {
	t.Parallel()

	c := NewCurator(nil, nil, zerolog.Nop())

	if _, err := c.Curate(context.Background(), nil, 5); !errors.Is(err, selection.ErrNotFound) {
		t.Errorf("empty pool error = %v, want ErrNotFound", err)
	}
	if _, err := c.Curate(context.Background(), testPool(), 0); !errors.Is(err, selection.ErrInvalidRequest) {
		t.Errorf("n=0 error = %v, want ErrInvalidRequest", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Curate(ctx, testPool(), 3); !errors.Is(err, selection.ErrCancelled) {
		t.Errorf("cancelled error = %v, want ErrCancelled", err)
	}
}

func TestCheckDiversity(t *testing.T) {
	t.Parallel()

	cands := []selection.Candidate{
		{ID: "1", Bucket: selection.BucketArt, Region: "porto", Tags: []string{"type:museum"}},
		{ID: "2", Bucket: selection.BucketNature, Region: "Porto", Tags: []string{"type:park"}},
		{ID: "3", Bucket: selection.BucketNature, Region: "braga", Tags: []string{"mood:calm", "type:park"}},
	}

	ok := CheckDiversity(cands, DiversityRequirements{MinBuckets: 2, MinSubtypes: 2, MinRegions: 2, ExactCount: 3})
	if !ok.Passed {
		t.Errorf("CheckDiversity failed: %v", ok.Failures)
	}
	if ok.Buckets != 2 || ok.Subtypes != 2 || ok.Regions != 2 {
		t.Errorf("counts = %+v", ok)
	}

	bad := CheckDiversity(cands, DiversityRequirements{MinBuckets: 3, ExactCount: 5})
	if bad.Passed || len(bad.Failures) != 2 {
		t.Errorf("CheckDiversity = %+v, want two failures", bad)
	}
}
