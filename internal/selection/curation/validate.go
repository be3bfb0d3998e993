// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package curation

import (
	"fmt"
	"strings"

	"github.com/tomtom215/wayfinder/internal/selection"
)

// LowDiversityThreshold is the diversity score below which a valid
// curation carries a warning.
const LowDiversityThreshold = 0.6

// Report is the outcome of validating a curation result.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	DiversityScore     float64            `json:"diversity_score"`
	BucketsRepresented []selection.Bucket `json:"buckets_represented"`
	MissingBuckets     []selection.Bucket `json:"missing_buckets,omitempty"`
}

// Err returns an *selection.InvalidCurationError when the report is
// invalid, nil otherwise.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	return &selection.InvalidCurationError{Reasons: r.Errors}
}

// Validate checks a curation result against the pool it was drawn from.
// The result must hold exactly min(n, distinct pool ids) distinct ids,
// all from pool, so duplicate pool entries count once. Summaries, when
// present, must cover exactly those ids, and cluster ids must be a subset
// of them. Diversity problems are reported as warnings only.
func Validate(result *selection.CurationResult, pool []selection.Candidate, n int, targetBuckets []selection.Bucket) Report {
	var rep Report
	if result == nil {
		rep.Errors = append(rep.Errors, "curation result is empty")
		return rep
	}

	byID := make(map[string]*selection.Candidate, len(pool))
	for i := range pool {
		byID[pool[i].ID] = &pool[i]
	}

	expected := min(n, len(byID))
	if len(result.IDs) != expected {
		rep.Errors = append(rep.Errors, fmt.Sprintf("must have exactly %d results, got %d", expected, len(result.IDs)))
	}

	selected := make(map[string]struct{}, len(result.IDs))
	var unknown, dupes []string
	for _, id := range result.IDs {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
		}
		if _, ok := selected[id]; ok {
			dupes = append(dupes, id)
		}
		selected[id] = struct{}{}
	}
	if len(unknown) > 0 {
		rep.Errors = append(rep.Errors, "ids not in candidate pool: "+strings.Join(unknown, ", "))
	}
	if len(dupes) > 0 {
		rep.Errors = append(rep.Errors, "duplicate ids: "+strings.Join(dupes, ", "))
	}

	if len(result.Summaries) > 0 {
		if !summariesMatch(result.Summaries, selected) {
			rep.Errors = append(rep.Errors, "summary ids must match selected ids")
		}
	}
	for _, cl := range result.Clusters {
		for _, id := range cl.IDs {
			if _, ok := selected[id]; !ok {
				rep.Errors = append(rep.Errors, fmt.Sprintf("cluster %q references unselected id %s", cl.Label, id))
				break
			}
		}
	}

	rep.Valid = len(rep.Errors) == 0

	var picked []selection.Candidate
	for _, id := range result.IDs {
		if c, ok := byID[id]; ok {
			picked = append(picked, *c)
		}
	}
	rep.BucketsRepresented = bucketsOf(picked)
	rep.DiversityScore = selection.DiversityScore(picked, pool, n)

	represented := make(map[selection.Bucket]struct{}, len(rep.BucketsRepresented))
	for _, b := range rep.BucketsRepresented {
		represented[b] = struct{}{}
	}
	for _, b := range targetBuckets {
		if _, ok := represented[b]; !ok {
			rep.MissingBuckets = append(rep.MissingBuckets, b)
		}
	}
	if len(targetBuckets) > 0 && rep.DiversityScore < LowDiversityThreshold {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("low diversity score: %.2f", rep.DiversityScore))
	}
	if len(rep.MissingBuckets) > 0 {
		missing := make([]string, len(rep.MissingBuckets))
		for i, b := range rep.MissingBuckets {
			missing[i] = string(b)
		}
		rep.Warnings = append(rep.Warnings, "missing buckets: "+strings.Join(missing, ", "))
	}
	return rep
}

func summariesMatch(summaries []selection.Summary, selected map[string]struct{}) bool {
	if len(summaries) != len(selected) {
		return false
	}
	seen := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		if _, ok := selected[s.ID]; !ok {
			return false
		}
		if _, dup := seen[s.ID]; dup {
			return false
		}
		seen[s.ID] = struct{}{}
	}
	return true
}

// DiversityRequirements are minimums checked by CheckDiversity.
type DiversityRequirements struct {
	MinBuckets  int `json:"min_buckets"`
	MinSubtypes int `json:"min_subtypes"`
	MinRegions  int `json:"min_regions"`

	// ExactCount, when positive, requires exactly that many candidates.
	ExactCount int `json:"exact_count"`
}

// DiversityCheck is the outcome of CheckDiversity.
type DiversityCheck struct {
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Buckets  int      `json:"buckets"`
	Subtypes int      `json:"subtypes"`
	Regions  int      `json:"regions"`
}

// CheckDiversity is a QA helper that verifies a selection meets minimum
// bucket, subtype and region variety. A candidate's subtype is the value
// of its first "type:" tag.
func CheckDiversity(cands []selection.Candidate, req DiversityRequirements) DiversityCheck {
	buckets := make(map[selection.Bucket]struct{})
	subtypes := make(map[string]struct{})
	regions := make(map[string]struct{})

	for i := range cands {
		c := &cands[i]
		if c.Bucket != "" {
			buckets[c.Bucket] = struct{}{}
		}
		if st := subtype(c); st != "" {
			subtypes[st] = struct{}{}
		}
		if c.Region != "" {
			regions[strings.ToLower(c.Region)] = struct{}{}
		}
	}

	chk := DiversityCheck{Buckets: len(buckets), Subtypes: len(subtypes), Regions: len(regions)}
	if req.ExactCount > 0 && len(cands) != req.ExactCount {
		chk.Failures = append(chk.Failures, fmt.Sprintf("expected exactly %d candidates, got %d", req.ExactCount, len(cands)))
	}
	if chk.Buckets < req.MinBuckets {
		chk.Failures = append(chk.Failures, fmt.Sprintf("expected at least %d buckets, got %d", req.MinBuckets, chk.Buckets))
	}
	if chk.Subtypes < req.MinSubtypes {
		chk.Failures = append(chk.Failures, fmt.Sprintf("expected at least %d subtypes, got %d", req.MinSubtypes, chk.Subtypes))
	}
	if chk.Regions < req.MinRegions {
		chk.Failures = append(chk.Failures, fmt.Sprintf("expected at least %d regions, got %d", req.MinRegions, chk.Regions))
	}
	chk.Passed = len(chk.Failures) == 0
	return chk
}

func subtype(c *selection.Candidate) string {
	for _, t := range c.Tags {
		if v, ok := strings.CutPrefix(strings.ToLower(t), "type:"); ok && v != "" {
			return v
		}
	}
	return ""
}
