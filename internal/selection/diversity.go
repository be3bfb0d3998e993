// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import "math"

// Quotas returns the matching-energy and stretch quotas for n.
func Quotas(n int, matchRatio float64) (match, stretch int) {
	if n <= 0 {
		return 0, 0
	}
	// The epsilon keeps 0.6×5 from rounding up to 4 on float error.
	match = int(math.Ceil(matchRatio*float64(n) - 1e-9))
	if match > n {
		match = n
	}
	return match, n - match
}

// SelectDiverse greedily picks up to n candidates from ranked, which must
// already be in score order.
//
// Matching-energy candidates fill the match quota, first at most one per
// bucket, then ignoring the bucket cap. The stretch quota is filled from
// gentle candidates (one energy level away) before extreme ones, each
// bucket-capped then uncapped. Remaining slots are filled in score order.
// The bucket cap is shared by all capped passes so that stretch picks
// favour buckets not yet represented. Without an energy preference every
// candidate counts as matching.
func SelectDiverse(ranked []Candidate, n int, preference EnergyLevel, matchRatio float64) []Candidate {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}

	var matching, gentle, extreme []*Candidate
	for i := range ranked {
		c := &ranked[i]
		switch {
		case preference == EnergyUnknown || c.Energy == preference:
			matching = append(matching, c)
		case EnergyDistance(c.Energy, preference) == 1:
			gentle = append(gentle, c)
		default:
			extreme = append(extreme, c)
		}
	}

	sel := &selector{
		chosen: make(map[string]struct{}, n),
		used:   make(map[Bucket]struct{}),
		out:    make([]Candidate, 0, n),
	}

	matchQuota, stretchQuota := Quotas(n, matchRatio)
	if preference == EnergyUnknown {
		matchQuota, stretchQuota = n, 0
	}

	sel.pick(matching, matchQuota, true)
	sel.pick(matching, matchQuota, false)

	stretchLimit := len(sel.out) + stretchQuota
	sel.pick(gentle, stretchLimit, true)
	sel.pick(gentle, stretchLimit, false)
	sel.pick(extreme, stretchLimit, true)
	sel.pick(extreme, stretchLimit, false)

	for i := range ranked {
		if len(sel.out) >= n {
			break
		}
		sel.take(&ranked[i])
	}
	return sel.out
}

type selector struct {
	chosen map[string]struct{}
	used   map[Bucket]struct{}
	out    []Candidate
}

// pick adds candidates from group until the selection reaches limit.
func (s *selector) pick(group []*Candidate, limit int, capped bool) {
	for _, c := range group {
		if len(s.out) >= limit {
			return
		}
		if capped {
			if _, ok := s.used[c.Bucket]; ok {
				continue
			}
		}
		s.take(c)
	}
}

func (s *selector) take(c *Candidate) {
	if _, ok := s.chosen[c.ID]; ok {
		return
	}
	s.chosen[c.ID] = struct{}{}
	s.used[c.Bucket] = struct{}{}
	s.out = append(s.out, *c)
}

// DiversityScore returns distinct buckets in selected divided by the
// smaller of n and the distinct buckets available in eligible.
func DiversityScore(selected, eligible []Candidate, n int) float64 {
	available := len(distinctBuckets(eligible))
	denom := min(n, available)
	if denom == 0 {
		return 0
	}
	return float64(len(distinctBuckets(selected))) / float64(denom)
}

// distinctBuckets returns the buckets of cands in first-seen order.
func distinctBuckets(cands []Candidate) []Bucket {
	seen := make(map[Bucket]struct{})
	var out []Bucket
	for i := range cands {
		b := cands[i].Bucket
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
