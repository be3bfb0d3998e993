// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"cmp"
	"math/rand"
	"slices"
	"strings"
)

// Score computes the relevance score of every candidate in pool and
// stores it in ann:
//
//	score = (wp×|preferred ∩ tags| + wc×|suggested ∩ tags| + we×[energy match]) × multiplier
//
// Missing multipliers default to 1.0. Score never fails.
func Score(pool []Candidate, spec *ConstraintSpec, multipliers map[string]float64, cfg *ScoringConfig, ann Annotations) {
	preferred := lowerSet(spec.PreferredTags)
	suggested := lowerSet(spec.SuggestedCategoryTags)

	for i := range pool {
		c := &pool[i]
		var preferredHits, suggestedHits int
		for _, t := range c.Tags {
			t = strings.ToLower(t)
			if _, ok := preferred[t]; ok {
				preferredHits++
			}
			if _, ok := suggested[t]; ok {
				suggestedHits++
			}
		}

		s := cfg.PreferredTagWeight*float64(preferredHits) + cfg.CategoryTagWeight*float64(suggestedHits)
		if spec.EnergyPreference != EnergyUnknown && c.Energy == spec.EnergyPreference {
			s += cfg.EnergyMatchWeight
		}

		a := ann.get(c.ID)
		a.FeedbackMultiplier = 1.0
		if m, ok := multipliers[c.ID]; ok {
			a.FeedbackMultiplier = m
		}
		a.Score = s * a.FeedbackMultiplier
	}
}

// Rank returns a copy of pool ordered by keyword hits descending (only
// when mandatory is set), then score descending, then the region hint,
// then id ascending. When rng is non-nil, candidates whose keys tie on
// everything except id are shuffled among themselves.
func Rank(pool []Candidate, mandatory bool, ann Annotations, rng *rand.Rand) []Candidate {
	out := slices.Clone(pool)
	keyCmp := func(a, b Candidate) int {
		if mandatory {
			if d := cmp.Compare(ann.KeywordHits(b.ID), ann.KeywordHits(a.ID)); d != 0 {
				return d
			}
		}
		if d := cmp.Compare(ann.Score(b.ID), ann.Score(a.ID)); d != 0 {
			return d
		}
		return cmp.Compare(regionRankOf(ann, a.ID), regionRankOf(ann, b.ID))
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		if d := keyCmp(a, b); d != 0 {
			return d
		}
		return strings.Compare(a.ID, b.ID)
	})

	if rng != nil {
		for start := 0; start < len(out); {
			end := start + 1
			for end < len(out) && keyCmp(out[start], out[end]) == 0 {
				end++
			}
			group := out[start:end]
			rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
			start = end
		}
	}
	return out
}

func regionRankOf(ann Annotations, id string) int {
	if a, ok := ann[id]; ok {
		return a.RegionRank
	}
	return 0
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}
