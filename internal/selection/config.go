// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"fmt"
	"slices"
	"time"
)

// Config contains all configuration for the selection engine.
type Config struct {
	// Filter contains hard and soft filter parameters.
	Filter FilterConfig `json:"filter" koanf:"filter"`

	// Scoring contains scoring weights.
	Scoring ScoringConfig `json:"scoring" koanf:"scoring"`

	// Diversity contains quota parameters.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Relaxation contains relaxation ladder parameters.
	Relaxation RelaxationConfig `json:"relaxation" koanf:"relaxation"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// FilterConfig contains filter parameters.
type FilterConfig struct {
	// NeverRecommendTags are tags that always exclude a candidate.
	// Default: ["explicit:opt-in-only", "adult"].
	NeverRecommendTags []string `json:"never_recommend_tags" koanf:"never_recommend_tags"`

	// KeywordConfidenceThreshold is the confidence at or above which
	// mandatory keywords must match.
	// Default: 0.9.
	KeywordConfidenceThreshold float64 `json:"keyword_confidence_threshold" koanf:"keyword_confidence_threshold"`

	// WeatherSuitabilityThreshold is the suitability at or below which a
	// candidate is dropped while weather gating is on.
	// Default: 0.3.
	WeatherSuitabilityThreshold float64 `json:"weather_suitability_threshold" koanf:"weather_suitability_threshold"`

	// SearchEverywhereKM is the distance limit at or above which a spec
	// is treated as search-everywhere.
	// Default: 50.
	SearchEverywhereKM float64 `json:"search_everywhere_km" koanf:"search_everywhere_km"`
}

// ScoringConfig contains scoring weights.
type ScoringConfig struct {
	// PreferredTagWeight is added per preferred tag match.
	// Default: 2.
	PreferredTagWeight float64 `json:"preferred_tag_weight" koanf:"preferred_tag_weight"`

	// CategoryTagWeight is added per suggested category tag match.
	// Default: 1.
	CategoryTagWeight float64 `json:"category_tag_weight" koanf:"category_tag_weight"`

	// EnergyMatchWeight is added when energy matches the preference.
	// Default: 1.
	EnergyMatchWeight float64 `json:"energy_match_weight" koanf:"energy_match_weight"`
}

// DiversityConfig contains diversity quota parameters.
type DiversityConfig struct {
	// MatchRatio is the share of N reserved for matching-energy picks,
	// rounded up.
	// Default: 0.6.
	MatchRatio float64 `json:"match_ratio" koanf:"match_ratio"`
}

// RelaxationConfig contains the relaxation ladder parameters.
type RelaxationConfig struct {
	// DistanceMultiplier widens the distance limit.
	// Default: 1.5.
	DistanceMultiplier float64 `json:"distance_multiplier" koanf:"distance_multiplier"`

	// RatingDecrement lowers the minimum rating.
	// Default: 0.5.
	RatingDecrement float64 `json:"rating_decrement" koanf:"rating_decrement"`

	// RatingFloor is the lowest minimum rating relaxation produces.
	// Default: 3.0.
	RatingFloor float64 `json:"rating_floor" koanf:"rating_floor"`

	// TravelTimeMultiplier widens the maximum travel time.
	// Default: 1.5.
	TravelTimeMultiplier float64 `json:"travel_time_multiplier" koanf:"travel_time_multiplier"`

	// FetchTimeout bounds each candidate source call.
	// Default: 5s.
	FetchTimeout time.Duration `json:"fetch_timeout" koanf:"fetch_timeout"`

	// FeedbackTimeout bounds each feedback lookup.
	// Default: 2s.
	FeedbackTimeout time.Duration `json:"feedback_timeout" koanf:"feedback_timeout"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxN is the largest N accepted.
	// Default: 50.
	MaxN int `json:"max_n" koanf:"max_n"`

	// DefaultN is used when a request does not specify N.
	// Default: 5.
	DefaultN int `json:"default_n" koanf:"default_n"`

	// MaxPool is the largest accumulated pool.
	// Default: 10000.
	MaxPool int `json:"max_pool" koanf:"max_pool"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			NeverRecommendTags:          []string{"explicit:opt-in-only", "adult"},
			KeywordConfidenceThreshold:  0.9,
			WeatherSuitabilityThreshold: 0.3,
			SearchEverywhereKM:          50,
		},
		Scoring: ScoringConfig{
			PreferredTagWeight: 2,
			CategoryTagWeight:  1,
			EnergyMatchWeight:  1,
		},
		Diversity: DiversityConfig{
			MatchRatio: 0.6,
		},
		Relaxation: RelaxationConfig{
			DistanceMultiplier:   1.5,
			RatingDecrement:      0.5,
			RatingFloor:          3.0,
			TravelTimeMultiplier: 1.5,
			FetchTimeout:         5 * time.Second,
			FeedbackTimeout:      2 * time.Second,
		},
		Limits: LimitsConfig{
			MaxN:     50,
			DefaultN: 5,
			MaxPool:  10000,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Filter.KeywordConfidenceThreshold < 0 || c.Filter.KeywordConfidenceThreshold > 1 {
		return fmt.Errorf("filter.keyword_confidence_threshold must be in [0, 1], got %f", c.Filter.KeywordConfidenceThreshold)
	}
	if c.Filter.WeatherSuitabilityThreshold < 0 || c.Filter.WeatherSuitabilityThreshold > 1 {
		return fmt.Errorf("filter.weather_suitability_threshold must be in [0, 1], got %f", c.Filter.WeatherSuitabilityThreshold)
	}
	if c.Filter.SearchEverywhereKM <= 0 {
		return fmt.Errorf("filter.search_everywhere_km must be positive, got %f", c.Filter.SearchEverywhereKM)
	}

	if c.Scoring.PreferredTagWeight < 0 || c.Scoring.CategoryTagWeight < 0 || c.Scoring.EnergyMatchWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}

	if c.Diversity.MatchRatio < 0 || c.Diversity.MatchRatio > 1 {
		return fmt.Errorf("diversity.match_ratio must be in [0, 1], got %f", c.Diversity.MatchRatio)
	}

	if c.Relaxation.DistanceMultiplier <= 1 {
		return fmt.Errorf("relaxation.distance_multiplier must be > 1, got %f", c.Relaxation.DistanceMultiplier)
	}
	if c.Relaxation.TravelTimeMultiplier <= 1 {
		return fmt.Errorf("relaxation.travel_time_multiplier must be > 1, got %f", c.Relaxation.TravelTimeMultiplier)
	}
	if c.Relaxation.RatingDecrement <= 0 {
		return fmt.Errorf("relaxation.rating_decrement must be positive, got %f", c.Relaxation.RatingDecrement)
	}
	if c.Relaxation.RatingFloor < 0 || c.Relaxation.RatingFloor > 5 {
		return fmt.Errorf("relaxation.rating_floor must be in [0, 5], got %f", c.Relaxation.RatingFloor)
	}
	if c.Relaxation.FetchTimeout <= 0 {
		return fmt.Errorf("relaxation.fetch_timeout must be positive, got %v", c.Relaxation.FetchTimeout)
	}
	if c.Relaxation.FeedbackTimeout <= 0 {
		return fmt.Errorf("relaxation.feedback_timeout must be positive, got %v", c.Relaxation.FeedbackTimeout)
	}

	if c.Limits.MaxN < 1 {
		return fmt.Errorf("limits.max_n must be positive, got %d", c.Limits.MaxN)
	}
	if c.Limits.DefaultN < 1 || c.Limits.DefaultN > c.Limits.MaxN {
		return fmt.Errorf("limits.default_n must be in [1, %d], got %d", c.Limits.MaxN, c.Limits.DefaultN)
	}
	if c.Limits.MaxPool < 1 {
		return fmt.Errorf("limits.max_pool must be positive, got %d", c.Limits.MaxPool)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Filter.NeverRecommendTags = slices.Clone(c.Filter.NeverRecommendTags)
	return &out
}
