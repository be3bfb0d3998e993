// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import "slices"

// ConstraintSpec is the set of filters and preferences driving one
// selection pass. A spec is never modified after construction; relaxation
// steps return new values.
type ConstraintSpec struct {
	// RequiredTags must all be present on a candidate.
	RequiredTags []string `json:"required_tags,omitempty" validate:"max=32,dive,max=128"`

	// AnyOfTags requires at least one match when non-empty.
	AnyOfTags []string `json:"any_of_tags,omitempty" validate:"max=32,dive,max=128"`

	// AvoidTags exclude any candidate carrying one of them.
	AvoidTags []string `json:"avoid_tags,omitempty" validate:"max=32,dive,max=128"`

	// AvoidKeywords exclude any candidate whose text contains one of them.
	AvoidKeywords []string `json:"avoid_keywords,omitempty" validate:"max=32,dive,max=128"`

	// MandatoryKeywords must be matched when KeywordConfidence reaches the
	// configured threshold.
	MandatoryKeywords []string `json:"mandatory_keywords,omitempty" validate:"max=32,dive,max=128"`

	// PreferredKeywords contribute keyword hits without being required.
	PreferredKeywords []string `json:"preferred_keywords,omitempty" validate:"max=32,dive,max=128"`

	// KeywordConfidence is how specific the request is (0-1).
	KeywordConfidence float64 `json:"keyword_confidence" validate:"gte=0,lte=1"`

	// PreferredTags are weighted most heavily when scoring.
	PreferredTags []string `json:"preferred_tags,omitempty" validate:"max=64,dive,max=128"`

	// SuggestedCategoryTags are the tags of categories suggested for the
	// request.
	SuggestedCategoryTags []string `json:"suggested_category_tags,omitempty" validate:"max=64,dive,max=128"`

	// EnergyPreference is the requested intensity.
	EnergyPreference EnergyLevel `json:"energy_preference"`

	// DistanceLimitKM is the maximum distance, if set.
	DistanceLimitKM *float64 `json:"distance_limit_km,omitempty" validate:"omitempty,gt=0"`

	// MinRating is the minimum rating, if set.
	MinRating *float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0,lte=5"`

	// MaxTravelMinutes is the maximum travel time, if set.
	MaxTravelMinutes *float64 `json:"max_travel_minutes,omitempty" validate:"omitempty,gt=0"`

	// WeatherGating drops candidates unsuitable for current weather.
	WeatherGating bool `json:"weather_gating"`

	// SearchEverywhere ranks candidates outside the home region first.
	// When nil the engine derives it from the distance limit on every pass.
	SearchEverywhere *bool `json:"search_everywhere,omitempty"`

	// Region is the home region of the request.
	Region string `json:"region,omitempty" validate:"max=128"`

	// Buckets are the target buckets of the request, used for retrieval
	// and diversity reporting.
	Buckets []Bucket `json:"buckets,omitempty" validate:"max=16,dive,bucket"`

	// Query is the original free-text query, used only in error messages.
	Query string `json:"query,omitempty" validate:"max=1024"`
}

// Clone returns a deep copy of the spec.
func (s *ConstraintSpec) Clone() ConstraintSpec {
	c := *s
	c.RequiredTags = slices.Clone(s.RequiredTags)
	c.AnyOfTags = slices.Clone(s.AnyOfTags)
	c.AvoidTags = slices.Clone(s.AvoidTags)
	c.AvoidKeywords = slices.Clone(s.AvoidKeywords)
	c.MandatoryKeywords = slices.Clone(s.MandatoryKeywords)
	c.PreferredKeywords = slices.Clone(s.PreferredKeywords)
	c.PreferredTags = slices.Clone(s.PreferredTags)
	c.SuggestedCategoryTags = slices.Clone(s.SuggestedCategoryTags)
	c.Buckets = slices.Clone(s.Buckets)
	c.DistanceLimitKM = clonePtr(s.DistanceLimitKM)
	c.MinRating = clonePtr(s.MinRating)
	c.MaxTravelMinutes = clonePtr(s.MaxTravelMinutes)
	if s.SearchEverywhere != nil {
		c.SearchEverywhere = Bool(*s.SearchEverywhere)
	}
	return c
}

// DeriveSearchEverywhere returns a copy of the spec with SearchEverywhere
// set from the distance limit: true when no limit is set or the limit is
// at least thresholdKM.
func (s *ConstraintSpec) DeriveSearchEverywhere(thresholdKM float64) ConstraintSpec {
	c := s.Clone()
	c.SearchEverywhere = Bool(c.DistanceLimitKM == nil || *c.DistanceLimitKM >= thresholdKM)
	return c
}

// Everywhere reports the search-everywhere toggle. An unset toggle reads
// as a local search.
func (s *ConstraintSpec) Everywhere() bool {
	return s.SearchEverywhere != nil && *s.SearchEverywhere
}

// MandatoryMatching reports whether mandatory keyword matching applies.
func (s *ConstraintSpec) MandatoryMatching(threshold float64) bool {
	return s.KeywordConfidence >= threshold && len(s.MandatoryKeywords) > 0
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Float returns a pointer to v. It is a convenience for building specs and
// candidates with optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
