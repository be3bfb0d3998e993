// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"slices"
	"strings"
)

// FilterStats counts candidates dropped by a filter pass.
type FilterStats struct {
	In          int
	HardDropped int
	SoftDropped int
	Out         int
}

// Filter applies hard and soft filters to pool and returns the survivors
// as a new slice ordered by keyword hits (mandatory mode only), then the
// region hint, then id. Keyword hits and region rank are written to ann.
//
// Hard filters are never relaxed: never-recommend tags, feedback
// exclusion, avoid tags and keywords, required and any-of tags, and the
// mandatory keyword match. Soft filters (distance, rating, travel time,
// weather gating) skip candidates that lack the corresponding value.
func Filter(pool []Candidate, spec *ConstraintSpec, excluded map[string]bool, cfg *FilterConfig, ann Annotations) ([]Candidate, FilterStats) {
	stats := FilterStats{In: len(pool)}
	mandatory := spec.MandatoryMatching(cfg.KeywordConfidenceThreshold)

	out := make([]Candidate, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		text := c.Text()

		if !passesHard(c, text, spec, excluded, cfg) {
			stats.HardDropped++
			continue
		}

		hits := 0
		if mandatory {
			required := countHits(text, spec.MandatoryKeywords)
			if required == 0 {
				stats.HardDropped++
				continue
			}
			hits = required + countHits(text, spec.PreferredKeywords)
		}

		if !passesSoft(c, spec, cfg) {
			stats.SoftDropped++
			continue
		}

		a := ann.get(c.ID)
		a.KeywordHits = hits
		a.RegionRank = regionRank(c, spec)
		out = append(out, *c)
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		if mandatory {
			if d := ann.KeywordHits(b.ID) - ann.KeywordHits(a.ID); d != 0 {
				return d
			}
		}
		if d := ann[a.ID].RegionRank - ann[b.ID].RegionRank; d != 0 {
			return d
		}
		return strings.Compare(a.ID, b.ID)
	})

	stats.Out = len(out)
	return out, stats
}

// IsHardExcluded reports whether c fails any hard filter of spec. It is
// exposed so callers can assert that relaxation never admits an excluded
// candidate.
func IsHardExcluded(c *Candidate, spec *ConstraintSpec, excluded map[string]bool, cfg *FilterConfig) bool {
	text := c.Text()
	if !passesHard(c, text, spec, excluded, cfg) {
		return true
	}
	if spec.MandatoryMatching(cfg.KeywordConfidenceThreshold) && countHits(text, spec.MandatoryKeywords) == 0 {
		return true
	}
	return false
}

func passesHard(c *Candidate, text string, spec *ConstraintSpec, excluded map[string]bool, cfg *FilterConfig) bool {
	for _, tag := range cfg.NeverRecommendTags {
		if c.HasTag(tag) {
			return false
		}
	}
	if excluded[c.ID] {
		return false
	}
	for _, tag := range spec.AvoidTags {
		if c.HasTag(tag) {
			return false
		}
	}
	for _, kw := range spec.AvoidKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(text, kw) {
			return false
		}
	}
	for _, tag := range spec.RequiredTags {
		if !c.HasTag(tag) {
			return false
		}
	}
	if len(spec.AnyOfTags) > 0 && !slices.ContainsFunc(spec.AnyOfTags, c.HasTag) {
		return false
	}
	return true
}

func passesSoft(c *Candidate, spec *ConstraintSpec, cfg *FilterConfig) bool {
	if spec.DistanceLimitKM != nil && c.DistanceKM != nil && *c.DistanceKM > *spec.DistanceLimitKM {
		return false
	}
	if spec.MinRating != nil && c.Rating != nil && *c.Rating < *spec.MinRating {
		return false
	}
	if spec.MaxTravelMinutes != nil && c.TravelMinutes != nil && *c.TravelMinutes > *spec.MaxTravelMinutes {
		return false
	}
	if spec.WeatherGating && c.WeatherSuitability != nil && *c.WeatherSuitability <= cfg.WeatherSuitabilityThreshold {
		return false
	}
	return true
}

// countHits returns how many distinct keywords occur in text.
func countHits(text string, keywords []string) int {
	hits := 0
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// regionRank implements the ranking hint: with search-everywhere the
// candidates outside the home region come first, otherwise local ones do.
func regionRank(c *Candidate, spec *ConstraintSpec) int {
	if spec.Region == "" {
		return 0
	}
	local := strings.EqualFold(c.Region, spec.Region)
	if spec.Everywhere() == local {
		return 1
	}
	return 0
}
