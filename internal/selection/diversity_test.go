// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"fmt"
	"testing"
)

func TestQuotas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n           int
		wantMatch   int
		wantStretch int
	}{
		{5, 3, 2},
		{1, 1, 0},
		{3, 2, 1},
		{10, 6, 4},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			t.Parallel()
			m, s := Quotas(tt.n, 0.6)
			if m != tt.wantMatch || s != tt.wantStretch {
				t.Errorf("Quotas(%d) = (%d, %d), want (%d, %d)", tt.n, m, s, tt.wantMatch, tt.wantStretch)
			}
		})
	}
}

// scenarioPool builds 20 candidates across 4 buckets. Every bucket holds
// two medium, two low and one high energy candidate.
func scenarioPool() []Candidate {
	buckets := []Bucket{BucketArt, BucketCulture, BucketNature, BucketNightlife}
	energies := []EnergyLevel{EnergyMedium, EnergyMedium, EnergyLow, EnergyHigh, EnergyLow}
	var pool []Candidate
	for _, b := range buckets {
		for j, e := range energies {
			pool = append(pool, cand(fmt.Sprintf("%s-%d", b, j), b, e))
		}
	}
	return pool
}

func rankForTest(pool []Candidate, pref EnergyLevel) []Candidate {
	cfg := DefaultConfig()
	ann := Annotations{}
	spec := &ConstraintSpec{EnergyPreference: pref}
	Score(pool, spec, nil, &cfg.Scoring, ann)
	return Rank(pool, false, ann, nil)
}

func TestSelectDiverse_ScenarioA(t *testing.T) {
	t.Parallel()

	ranked := rankForTest(scenarioPool(), EnergyMedium)
	got := SelectDiverse(ranked, 5, EnergyMedium, 0.6)

	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}

	medium := 0
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c.ID] {
			t.Errorf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
		if c.Energy == EnergyMedium {
			medium++
		}
	}
	if medium < 3 {
		t.Errorf("medium-energy picks = %d, want >= 3", medium)
	}
	if buckets := distinctBuckets(got); len(buckets) != 4 {
		t.Errorf("distinct buckets = %v, want 4", buckets)
	}

	want := []string{"art-0", "culture-0", "nature-0", "nightlife-2", "art-2"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("SelectDiverse() = %v, want %v", ids(got), want)
	}
}

func TestSelectDiverse_GentleBeforeExtreme(t *testing.T) {
	t.Parallel()

	pool := []Candidate{
		cand("m1", BucketArt, EnergyLow),
		cand("m2", BucketCulture, EnergyLow),
		cand("m3", BucketNature, EnergyLow),
		cand("a-extreme", BucketSocial, EnergyHigh),
		cand("z-gentle", BucketWellness, EnergyMedium),
	}
	got := SelectDiverse(rankForTest(pool, EnergyLow), 4, EnergyLow, 0.6)

	want := []string{"m1", "m2", "m3", "z-gentle"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("SelectDiverse() = %v, want %v", ids(got), want)
	}
}

func TestSelectDiverse_FillsWhenGroupsShort(t *testing.T) {
	t.Parallel()

	// Only one matching candidate: the remaining slots come from the
	// stretch group and then the score-ordered fill.
	pool := []Candidate{
		cand("match", BucketArt, EnergyHigh),
		cand("s1", BucketArt, EnergyLow),
		cand("s2", BucketArt, EnergyLow),
		cand("s3", BucketArt, EnergyLow),
		cand("s4", BucketArt, EnergyLow),
	}
	got := SelectDiverse(rankForTest(pool, EnergyHigh), 5, EnergyHigh, 0.6)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].ID != "match" {
		t.Errorf("first pick = %s, want match", got[0].ID)
	}
}

func TestSelectDiverse_ShortPool(t *testing.T) {
	t.Parallel()

	pool := []Candidate{
		cand("a", BucketArt, EnergyLow),
		cand("b", BucketArt, EnergyMedium),
	}
	got := SelectDiverse(rankForTest(pool, EnergyLow), 5, EnergyLow, 0.6)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := SelectDiverse(nil, 5, EnergyLow, 0.6); got != nil {
		t.Errorf("SelectDiverse(nil) = %v, want nil", got)
	}
}

func TestSelectDiverse_NoPreferenceIsBucketFirst(t *testing.T) {
	t.Parallel()

	pool := []Candidate{
		cand("a1", BucketArt, EnergyLow),
		cand("a2", BucketArt, EnergyLow),
		cand("b1", BucketCulture, EnergyHigh),
		cand("c1", BucketNature, EnergyMedium),
	}
	got := SelectDiverse(rankForTest(pool, EnergyUnknown), 3, EnergyUnknown, 0.6)
	want := []string{"a1", "b1", "c1"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("SelectDiverse() = %v, want %v", ids(got), want)
	}
}

func TestSelectDiverse_Deterministic(t *testing.T) {
	t.Parallel()

	pool := scenarioPool()
	first := ids(SelectDiverse(rankForTest(pool, EnergyMedium), 5, EnergyMedium, 0.6))
	for i := 0; i < 5; i++ {
		again := ids(SelectDiverse(rankForTest(pool, EnergyMedium), 5, EnergyMedium, 0.6))
		if fmt.Sprint(first) != fmt.Sprint(again) {
			t.Fatalf("run %d = %v, want %v", i, again, first)
		}
	}
}

func TestDiversityScore(t *testing.T) {
	t.Parallel()

	eligible := scenarioPool()
	selected := []Candidate{
		cand("x", BucketArt, EnergyLow),
		cand("y", BucketCulture, EnergyLow),
	}

	if got := DiversityScore(selected, eligible, 5); got != 0.5 {
		t.Errorf("DiversityScore = %f, want 0.5", got)
	}
	if got := DiversityScore(selected, eligible, 2); got != 1 {
		t.Errorf("DiversityScore(n=2) = %f, want 1", got)
	}
	if got := DiversityScore(nil, nil, 5); got != 0 {
		t.Errorf("DiversityScore(empty) = %f, want 0", got)
	}
}
