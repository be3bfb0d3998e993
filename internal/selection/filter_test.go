// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"fmt"
	"testing"
)

// cand builds a candidate for tests.
func cand(id string, bucket Bucket, energy EnergyLevel, opts ...func(*Candidate)) Candidate {
	c := Candidate{ID: id, Name: id, Bucket: bucket, Energy: energy}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func withTags(tags ...string) func(*Candidate) {
	return func(c *Candidate) { c.Tags = append(c.Tags, tags...) }
}

func withDistance(km float64) func(*Candidate) {
	return func(c *Candidate) { c.DistanceKM = Float(km) }
}

func withRating(r float64) func(*Candidate) {
	return func(c *Candidate) { c.Rating = Float(r) }
}

func withRegion(region string) func(*Candidate) {
	return func(c *Candidate) { c.Region = region }
}

func withDescription(d string) func(*Candidate) {
	return func(c *Candidate) { c.Description = d }
}

func withWeather(w float64) func(*Candidate) {
	return func(c *Candidate) { c.WeatherSuitability = Float(w) }
}

func ids(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i := range cands {
		out[i] = cands[i].ID
	}
	return out
}

func TestFilter_HardExclusions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("keep", BucketArt, EnergyLow),
		cand("never", BucketArt, EnergyLow, withTags("explicit:opt-in-only")),
		cand("rejected", BucketArt, EnergyLow),
		cand("avoid-tag", BucketArt, EnergyLow, withTags("mood:loud")),
		cand("avoid-kw", BucketArt, EnergyLow, withDescription("A noisy karaoke bar")),
	}
	spec := &ConstraintSpec{
		AvoidTags:     []string{"MOOD:LOUD"},
		AvoidKeywords: []string{"Karaoke"},
	}
	excluded := map[string]bool{"rejected": true}

	out, stats := Filter(pool, spec, excluded, &cfg, Annotations{})

	if got := ids(out); len(got) != 1 || got[0] != "keep" {
		t.Fatalf("Filter() = %v, want [keep]", got)
	}
	if stats.HardDropped != 4 {
		t.Errorf("HardDropped = %d, want 4", stats.HardDropped)
	}
	if stats.In != 5 || stats.Out != 1 {
		t.Errorf("stats = %+v, want In=5 Out=1", stats)
	}
}

func TestFilter_RequiredAndAnyOfTags(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("both", BucketArt, EnergyLow, withTags("type:museum", "mood:calm")),
		cand("required-only", BucketArt, EnergyLow, withTags("type:museum")),
		cand("anyof-only", BucketArt, EnergyLow, withTags("mood:calm")),
	}
	spec := &ConstraintSpec{
		RequiredTags: []string{"type:museum"},
		AnyOfTags:    []string{"mood:calm", "mood:quiet"},
	}

	out, _ := Filter(pool, spec, nil, &cfg, Annotations{})
	if got := ids(out); len(got) != 1 || got[0] != "both" {
		t.Errorf("Filter() = %v, want [both]", got)
	}
}

func TestFilter_MandatoryKeywords(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("a", BucketArt, EnergyLow, withDescription("pottery studio")),
		cand("b", BucketArt, EnergyLow, withDescription("pottery and glass blowing workshop")),
		cand("c", BucketArt, EnergyLow, withDescription("painting class")),
	}

	tests := []struct {
		name       string
		confidence float64
		want       []string
	}{
		{"specific request ranks by hits", 0.95, []string{"b", "a"}},
		{"threshold is inclusive", 0.9, []string{"b", "a"}},
		{"vague request keeps all", 0.5, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := &ConstraintSpec{
				MandatoryKeywords: []string{"pottery", "glass"},
				KeywordConfidence: tt.confidence,
			}
			ann := Annotations{}
			out, _ := Filter(pool, spec, nil, &cfg, ann)
			if got := fmt.Sprint(ids(out)); got != fmt.Sprint(tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
			if tt.confidence >= 0.9 && ann.KeywordHits("b") != 2 {
				t.Errorf("KeywordHits(b) = %d, want 2", ann.KeywordHits("b"))
			}
		})
	}
}

func TestFilter_SoftLimits(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("near", BucketArt, EnergyLow, withDistance(2), withRating(4.5)),
		cand("far", BucketArt, EnergyLow, withDistance(20), withRating(4.5)),
		cand("low-rated", BucketArt, EnergyLow, withDistance(2), withRating(3.0)),
		cand("unknown", BucketArt, EnergyLow),
		cand("rainy", BucketArt, EnergyLow, withWeather(0.3)),
		cand("sunny", BucketArt, EnergyLow, withWeather(0.31)),
	}
	spec := &ConstraintSpec{
		DistanceLimitKM: Float(5),
		MinRating:       Float(4.0),
		WeatherGating:   true,
	}

	out, stats := Filter(pool, spec, nil, &cfg, Annotations{})
	want := []string{"near", "sunny", "unknown"}
	if got := fmt.Sprint(ids(out)); got != fmt.Sprint(want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
	if stats.SoftDropped != 3 {
		t.Errorf("SoftDropped = %d, want 3", stats.SoftDropped)
	}
}

func TestFilter_RegionHint(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("a-home", BucketArt, EnergyLow, withRegion("porto")),
		cand("b-away", BucketArt, EnergyLow, withRegion("braga")),
	}

	tests := []struct {
		name       string
		everywhere bool
		want       []string
	}{
		{"local first", false, []string{"a-home", "b-away"}},
		{"explore first", true, []string{"b-away", "a-home"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := &ConstraintSpec{Region: "Porto", SearchEverywhere: Bool(tt.everywhere)}
			out, _ := Filter(pool, spec, nil, &cfg, Annotations{})
			if got := fmt.Sprint(ids(out)); got != fmt.Sprint(tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Filter
	pool := []Candidate{
		cand("b", BucketArt, EnergyLow),
		cand("a", BucketArt, EnergyLow),
	}
	Filter(pool, &ConstraintSpec{}, nil, &cfg, Annotations{})
	if pool[0].ID != "b" || pool[1].ID != "a" {
		t.Errorf("input pool reordered: %v", ids(pool))
	}
}

func TestDeriveSearchEverywhere(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit *float64
		want  bool
	}{
		{"no limit", nil, true},
		{"at threshold", Float(50), true},
		{"local", Float(10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := ConstraintSpec{DistanceLimitKM: tt.limit}
			got := spec.DeriveSearchEverywhere(50)
			if got.Everywhere() != tt.want {
				t.Errorf("SearchEverywhere = %v, want %v", got.Everywhere(), tt.want)
			}
			if spec.SearchEverywhere != nil {
				t.Error("original spec was modified")
			}
		})
	}
}
