// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package curation produces summarized, validated selections for
// presentation. A semantic curator may be plugged in; its output is
// validated and replaced by the deterministic fallback when invalid.
package curation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/tomtom215/wayfinder/internal/selection"
)

const (
	// RatingWeight is the weight of the rating in the fallback score.
	RatingWeight = 0.7

	// WeatherWeight is the weight of weather suitability in the fallback score.
	WeatherWeight = 0.3

	// FallbackReasoning is the reasoning attached to fallback results.
	FallbackReasoning = "Fallback curation based on ratings and weather suitability"

	// FallbackClusterLabel labels the single fallback cluster.
	FallbackClusterLabel = "Top Rated Experiences"

	maxHighlights    = 3
	descriptionLimit = 60
)

// Highlight tags.
const (
	HighlightHighlyRated     = "Highly rated"
	HighlightNearby          = "Nearby"
	HighlightWeatherSuitable = "Weather suitable"
)

// FallbackScore is 0.7×rating + 0.3×weather suitability. A missing
// rating counts as 0 and a missing suitability as 1.
func FallbackScore(c *selection.Candidate) float64 {
	rating := 0.0
	if c.Rating != nil {
		rating = *c.Rating
	}
	weather := 1.0
	if c.WeatherSuitability != nil {
		weather = *c.WeatherSuitability
	}
	return RatingWeight*rating + WeatherWeight*weather
}

// Fallback deterministically curates exactly min(n, distinct ids in pool)
// candidates: one per bucket in score order first, then the
// highest-scoring remainder. Duplicate ids in pool are considered once.
func Fallback(pool []selection.Candidate, n int) *selection.CurationResult {
	unique := dedupe(pool)
	slices.SortStableFunc(unique, func(a, b selection.Candidate) int {
		if d := cmp.Compare(FallbackScore(&b), FallbackScore(&a)); d != 0 {
			return d
		}
		return strings.Compare(a.ID, b.ID)
	})

	target := min(n, len(unique))
	if target < 0 {
		target = 0
	}

	picked := make([]selection.Candidate, 0, target)
	chosen := make(map[string]struct{}, target)
	used := make(map[selection.Bucket]struct{})

	for i := range unique {
		if len(picked) >= target {
			break
		}
		c := unique[i]
		if c.Bucket == "" {
			continue
		}
		if _, ok := used[c.Bucket]; ok {
			continue
		}
		used[c.Bucket] = struct{}{}
		chosen[c.ID] = struct{}{}
		picked = append(picked, c)
	}
	for i := range unique {
		if len(picked) >= target {
			break
		}
		if _, ok := chosen[unique[i].ID]; ok {
			continue
		}
		chosen[unique[i].ID] = struct{}{}
		picked = append(picked, unique[i])
	}

	result := &selection.CurationResult{
		IDs:                make([]string, len(picked)),
		Summaries:          make([]selection.Summary, len(picked)),
		DiversityScore:     selection.DiversityScore(picked, unique, n),
		BucketsRepresented: bucketsOf(picked),
		Reasoning:          FallbackReasoning,
		InsufficientSupply: len(picked) < n,
		Fallback:           true,
	}
	for i := range picked {
		result.IDs[i] = picked[i].ID
		result.Summaries[i] = selection.Summary{
			ID:         picked[i].ID,
			Blurb:      Blurb(&picked[i]),
			Highlights: Highlights(&picked[i]),
			Bucket:     picked[i].Bucket,
		}
	}
	if len(picked) > 0 {
		result.Clusters = []selection.Cluster{{Label: FallbackClusterLabel, IDs: slices.Clone(result.IDs)}}
	}
	return result
}

// Blurb renders the templated summary for a candidate.
func Blurb(c *selection.Candidate) string {
	rating := "good"
	if c.Rating != nil && *c.Rating > 0 {
		rating = fmt.Sprintf("%.1f", *c.Rating)
	}
	detail := "A great choice for your adventure."
	if c.Description != "" {
		detail = truncate(c.Description, descriptionLimit)
	}
	return fmt.Sprintf("%s offers an excellent experience with %s rating. %s Perfect for your current mood and weather conditions.",
		c.Name, rating, detail)
}

// Highlights returns at most three highlight tags for a candidate.
func Highlights(c *selection.Candidate) []string {
	var out []string
	if c.Rating != nil && *c.Rating >= 4.5 {
		out = append(out, HighlightHighlyRated)
	}
	if c.DistanceKM != nil && *c.DistanceKM < 2 {
		out = append(out, HighlightNearby)
	}
	if c.WeatherSuitability != nil && *c.WeatherSuitability > 0.8 {
		out = append(out, HighlightWeatherSuitable)
	}
	if len(out) > maxHighlights {
		out = out[:maxHighlights]
	}
	return out
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func dedupe(pool []selection.Candidate) []selection.Candidate {
	seen := make(map[string]struct{}, len(pool))
	out := make([]selection.Candidate, 0, len(pool))
	for i := range pool {
		if _, ok := seen[pool[i].ID]; ok {
			continue
		}
		seen[pool[i].ID] = struct{}{}
		out = append(out, pool[i])
	}
	return out
}

func bucketsOf(cands []selection.Candidate) []selection.Bucket {
	seen := make(map[selection.Bucket]struct{})
	var out []selection.Bucket
	for i := range cands {
		b := cands[i].Bucket
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
