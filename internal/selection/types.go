// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"context"
	"fmt"
	"strings"
)

// EnergyLevel is the ordinal intensity of a candidate.
type EnergyLevel int

const (
	// EnergyUnknown marks a candidate or preference without an energy level.
	EnergyUnknown EnergyLevel = iota
	// EnergyLow is calm, low-effort activity.
	EnergyLow
	// EnergyMedium is moderate activity.
	EnergyMedium
	// EnergyHigh is intense activity.
	EnergyHigh
)

// String returns the canonical name of the energy level.
func (e EnergyLevel) String() string {
	switch e {
	case EnergyLow:
		return "low"
	case EnergyMedium:
		return "medium"
	case EnergyHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseEnergyLevel parses an energy level name. "chill" is accepted as an
// alias for low.
func ParseEnergyLevel(s string) (EnergyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "chill":
		return EnergyLow, nil
	case "medium":
		return EnergyMedium, nil
	case "high":
		return EnergyHigh, nil
	case "", "unknown":
		return EnergyUnknown, nil
	default:
		return EnergyUnknown, fmt.Errorf("%w: unknown energy level %q", ErrInvalidRequest, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e EnergyLevel) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EnergyLevel) UnmarshalText(b []byte) error {
	lvl, err := ParseEnergyLevel(string(b))
	if err != nil {
		return err
	}
	*e = lvl
	return nil
}

// EnergyDistance returns the ordinal distance between two energy levels.
// Unknown levels are treated as maximally distant.
func EnergyDistance(a, b EnergyLevel) int {
	if a == EnergyUnknown || b == EnergyUnknown {
		return int(EnergyHigh - EnergyLow + 1)
	}
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// Bucket is a coarse category used for diversity quotas.
type Bucket string

// Known buckets.
const (
	BucketAdventure     Bucket = "adventure"
	BucketAdrenaline    Bucket = "adrenaline"
	BucketTrails        Bucket = "trails"
	BucketCulture       Bucket = "culture"
	BucketArt           Bucket = "art"
	BucketNature        Bucket = "nature"
	BucketOutdoor       Bucket = "outdoor"
	BucketWellness      Bucket = "wellness"
	BucketRelaxation    Bucket = "relaxation"
	BucketNightlife     Bucket = "nightlife"
	BucketEntertainment Bucket = "entertainment"
	BucketSocial        Bucket = "social"
	BucketCreative      Bucket = "creative"
	BucketPeaceful      Bucket = "peaceful"
	BucketFood          Bucket = "food"
	BucketShopping      Bucket = "shopping"
)

var knownBuckets = map[Bucket]struct{}{
	BucketAdventure: {}, BucketAdrenaline: {}, BucketTrails: {}, BucketCulture: {},
	BucketArt: {}, BucketNature: {}, BucketOutdoor: {}, BucketWellness: {},
	BucketRelaxation: {}, BucketNightlife: {}, BucketEntertainment: {}, BucketSocial: {},
	BucketCreative: {}, BucketPeaceful: {}, BucketFood: {}, BucketShopping: {},
}

// ParseBucket validates a bucket name against the closed set.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownBuckets[b]; !ok {
		return "", fmt.Errorf("%w: unknown bucket %q", ErrInvalidRequest, s)
	}
	return b, nil
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	_, ok := knownBuckets[b]
	return ok
}

// Candidate is one recommendable item. Candidates are treated as immutable
// values: stages never modify a Candidate, derived values are kept in
// Annotations.
type Candidate struct {
	// ID is the unique, stable identifier.
	ID string `json:"id" validate:"required,max=128"`

	// Name is the display name, also searched for keywords.
	Name string `json:"name" validate:"max=256"`

	// Bucket is the diversity category.
	Bucket Bucket `json:"bucket" validate:"required,bucket"`

	// Tags are namespaced tags such as "mood:calm" or "type:museum".
	Tags []string `json:"tags,omitempty" validate:"max=64,dive,max=128"`

	// Rating is the average rating (0-5), if known.
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`

	// DistanceKM is the distance from the user in kilometres, if known.
	DistanceKM *float64 `json:"distance_km,omitempty" validate:"omitempty,gte=0"`

	// TravelMinutes is the estimated travel time, if known.
	TravelMinutes *float64 `json:"travel_minutes,omitempty" validate:"omitempty,gte=0"`

	// Energy is the intensity level of the activity.
	Energy EnergyLevel `json:"energy"`

	// WeatherSuitability is a 0-1 score for current conditions, if known.
	WeatherSuitability *float64 `json:"weather_suitability,omitempty" validate:"omitempty,gte=0,lte=1"`

	// Region identifies the region the candidate belongs to.
	Region string `json:"region,omitempty" validate:"max=128"`

	// Description is free text used for keyword matching and blurbs.
	Description string `json:"description,omitempty" validate:"max=4096"`

	// Keywords are extra free-text terms used for keyword matching.
	Keywords []string `json:"keywords,omitempty" validate:"max=64,dive,max=128"`
}

// Text returns the lower-cased text searched by keyword filters.
func (c *Candidate) Text() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(strings.ToLower(c.Description))
	for _, k := range c.Keywords {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(k))
	}
	for _, t := range c.Tags {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(t))
	}
	return sb.String()
}

// HasTag reports whether the candidate carries tag (case-insensitive).
func (c *Candidate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Annotation holds values derived for one candidate during a single run.
type Annotation struct {
	KeywordHits        int
	FeedbackMultiplier float64
	Score              float64

	// RegionRank is 0 for candidates favoured by the region hint, 1 otherwise.
	RegionRank int
}

// Annotations maps candidate id to derived values. A new map is built for
// every pipeline run.
type Annotations map[string]*Annotation

func (a Annotations) get(id string) *Annotation {
	ann, ok := a[id]
	if !ok {
		ann = &Annotation{FeedbackMultiplier: 1.0}
		a[id] = ann
	}
	return ann
}

// Score returns the annotated score for id, or zero.
func (a Annotations) Score(id string) float64 {
	if ann, ok := a[id]; ok {
		return ann.Score
	}
	return 0
}

// KeywordHits returns the annotated keyword hit count for id, or zero.
func (a Annotations) KeywordHits(id string) int {
	if ann, ok := a[id]; ok {
		return ann.KeywordHits
	}
	return 0
}

// SelectionResult is the output of Engine.Select.
type SelectionResult struct {
	// RequestID identifies the selection request in logs and telemetry.
	RequestID string `json:"request_id"`

	// IDs are the chosen candidate ids in selection order.
	IDs []string `json:"ids"`

	// Candidates are the chosen candidates in selection order.
	Candidates []Candidate `json:"candidates"`

	// DiversityScore is distinct buckets selected divided by
	// min(N, buckets available in the eligible pool).
	DiversityScore float64 `json:"diversity_score"`

	// BucketsRepresented lists the distinct buckets in selection order.
	BucketsRepresented []Bucket `json:"buckets_represented"`

	// RelaxationSteps lists the names of relaxation steps applied.
	RelaxationSteps []string `json:"relaxation_steps"`

	// RelaxationCount is the number of relaxation steps applied.
	RelaxationCount int `json:"relaxation_count"`

	// TotalCandidatesSeen is the size of the accumulated pool.
	TotalCandidatesSeen int `json:"total_candidates_seen"`

	// CandidatesDropped counts unique candidates refused because the pool
	// had reached limits.max_pool.
	CandidatesDropped int `json:"candidates_dropped,omitempty"`

	// InsufficientSupply is set when fewer than N candidates were selected.
	InsufficientSupply bool `json:"insufficient_supply"`

	// UpstreamFailures counts collaborator calls that degraded to defaults.
	UpstreamFailures int `json:"upstream_failures"`

	// Events is the structured telemetry for this request.
	Events []Event `json:"events"`
}

// Summary is a presentation summary for one curated candidate.
type Summary struct {
	ID         string   `json:"id"`
	Blurb      string   `json:"blurb"`
	Highlights []string `json:"highlights,omitempty"`
	Bucket     Bucket   `json:"bucket,omitempty"`
}

// Cluster is a labelled group of curated ids.
type Cluster struct {
	Label  string   `json:"label"`
	Bucket Bucket   `json:"bucket,omitempty"`
	IDs    []string `json:"ids"`
}

// CurationResult is a summarized, validated selection for presentation.
type CurationResult struct {
	IDs                []string  `json:"ids"`
	Summaries          []Summary `json:"summaries"`
	Clusters           []Cluster `json:"clusters,omitempty"`
	DiversityScore     float64   `json:"diversity_score"`
	BucketsRepresented []Bucket  `json:"buckets_represented"`
	Reasoning          string    `json:"reasoning"`

	// InsufficientSupply is set when fewer than N ids could be produced.
	InsufficientSupply bool `json:"insufficient_supply"`

	// Fallback is set when the deterministic curator produced the result.
	Fallback bool `json:"fallback"`

	// FallbackReason explains why the semantic result was not used.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// CandidateSource retrieves candidates matching a spec.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, spec *ConstraintSpec) ([]Candidate, error)
}

// FeedbackProvider supplies historical-outcome signals for candidates.
// Ids missing from the returned maps are treated as not excluded and
// as having a multiplier of 1.0.
type FeedbackProvider interface {
	Excluded(ctx context.Context, ids []string) (map[string]bool, error)
	Multipliers(ctx context.Context, ids []string) (map[string]float64, error)
}

// EventSink receives telemetry events.
type EventSink interface {
	Emit(ev Event)
}
