// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package weather derives weather suitability scores for candidates from
// current conditions. The selection engine's weather gate then drops
// candidates whose suitability is at or below its threshold.
package weather

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tomtom215/wayfinder/internal/selection"
)

// Recommendation is the kind of venue current conditions favor.
type Recommendation string

const (
	Indoor  Recommendation = "indoor"
	Covered Recommendation = "covered"
	Outdoor Recommendation = "outdoor"
)

// Thresholds for Analyze.
const (
	HeavyRainMM      = 5.0
	CoveredRainMM    = 2.0
	StrongWindKPH    = 30.0
	MinComfortTempC  = -5.0
	MaxComfortTempC  = 35.0
	PoorVisibilityKM = 2.0

	defaultVisibilityKM = 10.0
)

// Conditions are the current weather observations.
type Conditions struct {
	Summary         string   `json:"summary,omitempty" validate:"max=64"`
	TemperatureC    float64  `json:"temperature_c" validate:"gte=-90,lte=60"`
	PrecipitationMM float64  `json:"precipitation_mm" validate:"gte=0"`
	WindKPH         float64  `json:"wind_kph" validate:"gte=0"`
	VisibilityKM    *float64 `json:"visibility_km,omitempty" validate:"omitempty,gte=0"`
}

// Gating is the analysis of Conditions.
type Gating struct {
	HeavyRain      bool           `json:"heavy_rain"`
	StrongWind     bool           `json:"strong_wind"`
	ExtremeTemp    bool           `json:"extreme_temp"`
	PoorVisibility bool           `json:"poor_visibility"`
	Recommendation Recommendation `json:"recommendation"`
}

// Analyze classifies conditions. Heavy rain or poor visibility recommend
// indoor venues; wind, extreme temperature or light rain recommend
// covered ones. A missing visibility reading counts as 10 km.
func Analyze(c Conditions) Gating {
	visibility := defaultVisibilityKM
	if c.VisibilityKM != nil {
		visibility = *c.VisibilityKM
	}
	g := Gating{
		HeavyRain:      c.PrecipitationMM > HeavyRainMM,
		StrongWind:     c.WindKPH > StrongWindKPH,
		ExtremeTemp:    c.TemperatureC < MinComfortTempC || c.TemperatureC > MaxComfortTempC,
		PoorVisibility: visibility < PoorVisibilityKM,
		Recommendation: Outdoor,
	}
	switch {
	case g.HeavyRain || g.PoorVisibility:
		g.Recommendation = Indoor
	case g.StrongWind || g.ExtremeTemp || c.PrecipitationMM > CoveredRainMM:
		g.Recommendation = Covered
	}
	return g
}

// Advice is a one-line explanation of the gating for display.
func Advice(g Gating, c Conditions) string {
	switch g.Recommendation {
	case Indoor:
		if g.HeavyRain {
			return fmt.Sprintf("Heavy rain (%.1fmm/h) - indoor activities recommended", c.PrecipitationMM)
		}
		if g.PoorVisibility {
			return "Poor visibility - indoor activities recommended"
		}
		return fmt.Sprintf("Severe weather (%.0f°C) - indoor activities recommended", c.TemperatureC)
	case Covered:
		if g.StrongWind {
			return fmt.Sprintf("Strong winds (%.0fkm/h) - covered areas recommended", c.WindKPH)
		}
		if g.ExtremeTemp {
			return fmt.Sprintf("Extreme temperature (%.0f°C) - covered areas recommended", c.TemperatureC)
		}
		return "Light rain - covered areas recommended"
	default:
		return "Good conditions for outdoor activities"
	}
}

var (
	indoorTypes   = []string{"museum", "art_gallery", "library", "shopping_mall", "movie_theater", "gym", "spa", "casino", "bowling_alley", "escape_room", "arcade"}
	indoorWords   = []string{"museum", "gallery", "mall", "cinema", "theater", "gym", "spa", "indoor", "covered", "inside", "center", "centre"}
	outdoorTypes  = []string{"park", "tourist_attraction", "natural_feature", "beach", "trail"}
	outdoorWords  = []string{"park", "trail", "hike", "outdoor", "nature", "garden", "beach", "mountain", "forest", "lake", "river", "viewpoint"}
	coveredTypes  = []string{"restaurant", "cafe", "bar", "church", "synagogue", "hindu_temple"}
	coveredWords  = []string{"restaurant", "cafe", "bar", "pub", "church", "temple", "covered", "rooftop", "terrace", "pavilion"}
	rainTypes     = []string{"park", "tourist_attraction", "amusement_park"}
	rainWords     = []string{"outdoor", "trail", "hike", "garden", "terrace"}
	windTypes     = []string{"amusement_park", "tourist_attraction"}
	windWords     = []string{"outdoor", "rooftop", "terrace", "viewpoint", "tower"}
	heatColdTypes = []string{"park", "zoo", "amusement_park"}
	heatColdWords = []string{"outdoor", "trail", "hike", "garden", "beach"}

	bucketFactors = map[selection.Bucket]map[Recommendation]float64{
		selection.BucketTrails:     {Indoor: 0.2, Covered: 0.4},
		selection.BucketNature:     {Indoor: 0.3, Covered: 0.6},
		selection.BucketAdrenaline: {Indoor: 0.7, Covered: 0.8},
		selection.BucketCulture:    {Indoor: 1.2, Covered: 1.1},
		selection.BucketArt:        {Indoor: 1.2, Covered: 1.1},
		selection.BucketWellness:   {Indoor: 1.1, Outdoor: 0.9},
		selection.BucketNightlife:  {Outdoor: 0.8},
	}
)

// Suitability scores how well c fits the gated conditions, in [0, 1].
// Venue kind is read from "type:" tags and the lower-cased name.
func Suitability(c *selection.Candidate, g Gating) float64 {
	v := newVenue(c)
	if v.matches(indoorTypes, indoorWords) {
		return 1
	}

	s := 1.0
	outdoor := v.matches(outdoorTypes, outdoorWords)
	switch g.Recommendation {
	case Indoor:
		if outdoor {
			s *= 0.2
		} else if v.matches(coveredTypes, coveredWords) {
			s *= 0.6
		}
	case Covered:
		if outdoor {
			s *= 0.5
		}
	}

	if f, ok := bucketFactors[c.Bucket][g.Recommendation]; ok {
		s *= f
	}
	if g.HeavyRain && v.matches(rainTypes, rainWords) {
		s *= 0.3
	}
	if g.StrongWind && v.matches(windTypes, windWords) {
		s *= 0.4
	}
	if g.ExtremeTemp && v.matches(heatColdTypes, heatColdWords) {
		s *= 0.4
	}
	return math.Max(0, math.Min(1, s))
}

// Annotate returns a copy of pool in which every candidate without a
// WeatherSuitability has one computed from g. pool is not modified.
func Annotate(pool []selection.Candidate, g Gating) []selection.Candidate {
	out := slices.Clone(pool)
	for i := range out {
		if out[i].WeatherSuitability != nil {
			continue
		}
		out[i].WeatherSuitability = selection.Float(Suitability(&out[i], g))
	}
	return out
}

type venue struct {
	types []string
	name  string
}

func newVenue(c *selection.Candidate) venue {
	v := venue{name: strings.ToLower(c.Name)}
	for _, t := range c.Tags {
		if kind, ok := strings.CutPrefix(strings.ToLower(t), "type:"); ok {
			v.types = append(v.types, kind)
		}
	}
	return v
}

func (v venue) matches(types, words []string) bool {
	for _, t := range v.types {
		if slices.Contains(types, t) {
			return true
		}
	}
	for _, w := range words {
		if strings.Contains(v.name, w) {
			return true
		}
	}
	return false
}
