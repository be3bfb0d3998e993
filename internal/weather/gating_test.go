// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package weather

import (
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/wayfinder/internal/selection"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	foggy := 1.5
	tests := []struct {
		name string
		in   Conditions
		want Gating
	}{
		{
			name: "clear",
			in:   Conditions{TemperatureC: 20, WindKPH: 10},
			want: Gating{Recommendation: Outdoor},
		},
		{
			name: "heavy rain",
			in:   Conditions{TemperatureC: 15, PrecipitationMM: 6},
			want: Gating{HeavyRain: true, Recommendation: Indoor},
		},
		{
			name: "rain at threshold is light",
			in:   Conditions{TemperatureC: 15, PrecipitationMM: 5},
			want: Gating{Recommendation: Covered},
		},
		{
			name: "drizzle",
			in:   Conditions{TemperatureC: 15, PrecipitationMM: 1},
			want: Gating{Recommendation: Outdoor},
		},
		{
			name: "strong wind",
			in:   Conditions{TemperatureC: 15, WindKPH: 45},
			want: Gating{StrongWind: true, Recommendation: Covered},
		},
		{
			name: "heat",
			in:   Conditions{TemperatureC: 38},
			want: Gating{ExtremeTemp: true, Recommendation: Covered},
		},
		{
			name: "cold",
			in:   Conditions{TemperatureC: -10},
			want: Gating{ExtremeTemp: true, Recommendation: Covered},
		},
		{
			name: "fog",
			in:   Conditions{TemperatureC: 10, VisibilityKM: &foggy},
			want: Gating{PoorVisibility: true, Recommendation: Indoor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Analyze(tt.in); got != tt.want {
				t.Errorf("Analyze() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSuitability(t *testing.T) {
	t.Parallel()

	rain := Analyze(Conditions{TemperatureC: 12, PrecipitationMM: 8})
	windy := Analyze(Conditions{TemperatureC: 12, WindKPH: 50})
	sunny := Analyze(Conditions{TemperatureC: 20})

	tests := []struct {
		name string
		c    selection.Candidate
		g    Gating
		want float64
	}{
		{"museum in rain", selection.Candidate{Name: "City Museum", Bucket: selection.BucketCulture}, rain, 1},
		{"museum by tag", selection.Candidate{Name: "Collection", Tags: []string{"type:museum"}, Bucket: selection.BucketArt}, rain, 1},
		// outdoor 0.2, trails 0.2, rain-sensitive 0.3
		{"trail in rain", selection.Candidate{Name: "Ridge Trail", Bucket: selection.BucketTrails}, rain, 0.2 * 0.2 * 0.3},
		// covered 0.6
		{"cafe in rain", selection.Candidate{Name: "Corner Cafe", Bucket: selection.BucketFood}, rain, 0.6},
		// outdoor 0.5, nature 0.6, wind-sensitive 0.4
		{"viewpoint in wind", selection.Candidate{Name: "Harbour Viewpoint", Bucket: selection.BucketNature}, windy, 0.5 * 0.6 * 0.4},
		{"culture capped at 1", selection.Candidate{Name: "Old Quarter", Bucket: selection.BucketCulture}, windy, 1},
		{"clear trail", selection.Candidate{Name: "Ridge Trail", Bucket: selection.BucketTrails}, sunny, 1},
		{"nightlife outdoors", selection.Candidate{Name: "Dance Hall", Bucket: selection.BucketNightlife}, sunny, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := tt.c
			if got := Suitability(&c, tt.g); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Suitability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	t.Parallel()

	pool := []selection.Candidate{
		{ID: "t", Name: "Ridge Trail", Bucket: selection.BucketTrails},
		{ID: "m", Name: "Museum", Bucket: selection.BucketCulture, WeatherSuitability: selection.Float(0.5)},
	}
	g := Analyze(Conditions{TemperatureC: 12, PrecipitationMM: 8})

	out := Annotate(pool, g)
	if pool[0].WeatherSuitability != nil {
		t.Error("Annotate modified the input pool")
	}
	if out[0].WeatherSuitability == nil || *out[0].WeatherSuitability > 0.3 {
		t.Errorf("trail suitability = %v, want a low score", out[0].WeatherSuitability)
	}
	if *out[1].WeatherSuitability != 0.5 {
		t.Errorf("existing suitability overwritten: %v", *out[1].WeatherSuitability)
	}
}

func TestAdvice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Conditions
		want string
	}{
		{Conditions{TemperatureC: 20}, "outdoor"},
		{Conditions{TemperatureC: 15, PrecipitationMM: 9}, "Heavy rain"},
		{Conditions{TemperatureC: 15, WindKPH: 40}, "Strong winds"},
		{Conditions{TemperatureC: 15, PrecipitationMM: 3}, "Light rain"},
	}
	for _, tt := range tests {
		if got := Advice(Analyze(tt.in), tt.in); !strings.Contains(got, tt.want) {
			t.Errorf("Advice(%+v) = %q, want containing %q", tt.in, got, tt.want)
		}
	}
}
