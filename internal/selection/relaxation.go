// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/metrics"
)

// Relaxation step names, in ladder order.
const (
	StepRadiusIncrease       = "radius_increase"
	StepRatingDecrease       = "rating_decrease"
	StepTravelTimeIncrease   = "travel_time_increase"
	StepDisableWeatherGating = "disable_weather_gating"
)

// RelaxationStep loosens one soft constraint. Apply is total and returns a
// new spec; the input is never modified. A step whose dimension is unset
// returns an unchanged copy.
type RelaxationStep struct {
	Name  string
	Apply func(ConstraintSpec) ConstraintSpec
}

// Ladder returns the fixed relaxation ladder:
// widen distance, lower minimum rating, widen travel time, disable
// weather gating.
func Ladder(cfg *RelaxationConfig) []RelaxationStep {
	distanceMul := cfg.DistanceMultiplier
	ratingDec := cfg.RatingDecrement
	ratingFloor := cfg.RatingFloor
	travelMul := cfg.TravelTimeMultiplier

	return []RelaxationStep{
		{
			Name: StepRadiusIncrease,
			Apply: func(s ConstraintSpec) ConstraintSpec {
				out := s.Clone()
				if out.DistanceLimitKM != nil {
					out.DistanceLimitKM = Float(*out.DistanceLimitKM * distanceMul)
				}
				return out
			},
		},
		{
			Name: StepRatingDecrease,
			Apply: func(s ConstraintSpec) ConstraintSpec {
				out := s.Clone()
				if out.MinRating != nil && *out.MinRating > ratingFloor {
					out.MinRating = Float(math.Max(*out.MinRating-ratingDec, ratingFloor))
				}
				return out
			},
		},
		{
			Name: StepTravelTimeIncrease,
			Apply: func(s ConstraintSpec) ConstraintSpec {
				out := s.Clone()
				if out.MaxTravelMinutes != nil {
					out.MaxTravelMinutes = Float(*out.MaxTravelMinutes * travelMul)
				}
				return out
			},
		},
		{
			Name: StepDisableWeatherGating,
			Apply: func(s ConstraintSpec) ConstraintSpec {
				out := s.Clone()
				out.WeatherGating = false
				return out
			},
		},
	}
}

// controller runs the FILTER_SCORE_SELECT → CHECK → RELAX → DONE loop for
// a single request. It owns its pool, spec and annotations.
type controller struct {
	cfg      *Config
	source   CandidateSource
	feedback FeedbackProvider
	ladder   []RelaxationStep
	logger   zerolog.Logger
	rec      *recorder
	rng      *rand.Rand

	pool     []Candidate
	index    map[string]struct{}
	looked   map[string]struct{}
	excluded map[string]bool
	mults    map[string]float64

	steps            []string
	upstreamFailures int
	dropped          int
}

// outcome is the state of the controller when it reaches DONE.
type outcome struct {
	spec     ConstraintSpec
	selected []Candidate
	eligible []Candidate
}

// merge adds unseen candidates to the pool and returns how many were added
// and how many were refused because the pool is full.
func (c *controller) merge(cands []Candidate, pass int) (added, dropped int) {
	for i := range cands {
		id := cands[i].ID
		if id == "" {
			continue
		}
		if _, ok := c.index[id]; ok {
			continue
		}
		if len(c.pool) >= c.cfg.Limits.MaxPool {
			dropped++
			continue
		}
		c.index[id] = struct{}{}
		c.pool = append(c.pool, cands[i])
		added++
	}
	if dropped > 0 {
		c.dropped += dropped
		c.logger.Warn().
			Int("dropped", dropped).
			Int("max_pool", c.cfg.Limits.MaxPool).
			Int("pass", pass).
			Msg("Candidate pool full, dropping candidates")
		c.rec.emit(Event{Stage: StageFetch, State: c.stateFor(pass), Pass: pass, CountIn: len(cands), CountOut: added, Detail: "pool_capped"})
	}
	return added, dropped
}

func (c *controller) run(ctx context.Context, spec ConstraintSpec, n int) (*outcome, error) {
	current := spec
	derive := spec.SearchEverywhere == nil
	if derive {
		current = current.DeriveSearchEverywhere(c.cfg.Filter.SearchEverywhereKM)
	}
	state := StateFilterScoreSelect
	next := 0
	pass := 0

	if c.source != nil {
		if err := c.fetch(ctx, &current, pass); err != nil {
			return nil, err
		}
	}

	var out outcome
	for {
		switch state {
		case StateFilterScoreSelect:
			if err := checkCancelled(ctx); err != nil {
				return nil, err
			}
			if err := c.lookupFeedback(ctx, pass); err != nil {
				return nil, err
			}
			out = c.pass(&current, n, pass)
			state = StateCheck

		case StateCheck:
			done := len(out.selected) >= n || next >= len(c.ladder)
			c.rec.emit(Event{
				Stage: StageCheck, State: StateCheck, Pass: pass,
				CountIn: len(out.eligible), CountOut: len(out.selected),
				Detail: fmt.Sprintf("target=%d ladder_remaining=%d", n, len(c.ladder)-next),
			})
			if done {
				state = StateDone
			} else {
				state = StateRelax
			}

		case StateRelax:
			if err := checkCancelled(ctx); err != nil {
				return nil, err
			}
			step := c.ladder[next]
			next++
			pass++
			current = step.Apply(current)
			if derive {
				current = current.DeriveSearchEverywhere(c.cfg.Filter.SearchEverywhereKM)
			}
			c.steps = append(c.steps, step.Name)
			c.rec.emit(Event{Stage: StageRelax, State: StateRelax, Pass: pass, CountIn: len(c.pool), Step: step.Name})
			c.logger.Debug().Str("step", step.Name).Int("pass", pass).Int("selected", len(out.selected)).Msg("Relaxing constraints")

			if c.source != nil {
				if err := c.fetch(ctx, &current, pass); err != nil {
					return nil, err
				}
			}
			state = StateFilterScoreSelect

		case StateDone:
			out.spec = current
			c.rec.emit(Event{Stage: StageDone, State: StateDone, Pass: pass, CountIn: len(c.pool), CountOut: len(out.selected)})
			return &out, nil
		}
	}
}

// pass runs filter, score and select over the accumulated pool.
func (c *controller) pass(spec *ConstraintSpec, n int, pass int) outcome {
	ann := make(Annotations, len(c.pool))

	eligible, stats := Filter(c.pool, spec, c.excluded, &c.cfg.Filter, ann)
	c.rec.emit(Event{
		Stage: StageFilter, State: StateFilterScoreSelect, Pass: pass,
		CountIn: stats.In, CountOut: stats.Out,
		Detail: fmt.Sprintf("hard_dropped=%d soft_dropped=%d", stats.HardDropped, stats.SoftDropped),
	})

	Score(eligible, spec, c.mults, &c.cfg.Scoring, ann)
	ranked := Rank(eligible, spec.MandatoryMatching(c.cfg.Filter.KeywordConfidenceThreshold), ann, c.rng)
	c.rec.emit(Event{Stage: StageScore, State: StateFilterScoreSelect, Pass: pass, CountIn: len(eligible), CountOut: len(ranked)})

	selected := SelectDiverse(ranked, n, spec.EnergyPreference, c.cfg.Diversity.MatchRatio)
	c.rec.emit(Event{Stage: StageSelect, State: StateFilterScoreSelect, Pass: pass, CountIn: len(ranked), CountOut: len(selected)})

	return outcome{selected: selected, eligible: ranked}
}

// fetch retrieves candidates for spec and merges them into the pool. A
// failed or timed-out call is an empty delta. Only cancellation of the
// request itself is returned as an error.
func (c *controller) fetch(ctx context.Context, spec *ConstraintSpec, pass int) error {
	if err := checkCancelled(ctx); err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.Relaxation.FetchTimeout)
	cands, err := c.source.FetchCandidates(fetchCtx, spec)
	cancel()

	if err != nil {
		if cerr := checkCancelled(ctx); cerr != nil {
			return cerr
		}
		c.upstreamFailures++
		metrics.UpstreamFailures.WithLabelValues("fetch").Inc()
		c.logger.Warn().Err(err).Int("pass", pass).Msg("Candidate fetch failed, continuing with empty delta")
		c.rec.emit(Event{Stage: StageFetch, State: c.stateFor(pass), Pass: pass, CountIn: len(c.pool), CountOut: 0, Detail: "upstream_unavailable"})
		return nil
	}

	added, dropped := c.merge(cands, pass)
	if dropped == 0 {
		c.rec.emit(Event{Stage: StageFetch, State: c.stateFor(pass), Pass: pass, CountIn: len(cands), CountOut: added})
	}
	return nil
}

func (c *controller) stateFor(pass int) State {
	if pass == 0 {
		return StateFilterScoreSelect
	}
	return StateRelax
}

// lookupFeedback fetches exclusion and multiplier signals for candidates
// not yet looked up. Both lookups run concurrently; failures resolve to
// neutral values.
func (c *controller) lookupFeedback(ctx context.Context, pass int) error {
	if c.feedback == nil {
		return nil
	}

	var ids []string
	for i := range c.pool {
		id := c.pool[i].ID
		if _, ok := c.looked[id]; ok {
			continue
		}
		c.looked[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.cfg.Relaxation.FeedbackTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		excluded map[string]bool
		mults    map[string]float64
		exclErr  error
		multErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		excluded, exclErr = c.feedback.Excluded(lookupCtx, ids)
	}()
	go func() {
		defer wg.Done()
		mults, multErr = c.feedback.Multipliers(lookupCtx, ids)
	}()
	wg.Wait()

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	if err := errors.Join(exclErr, multErr); err != nil {
		c.upstreamFailures++
		metrics.UpstreamFailures.WithLabelValues("feedback").Inc()
		c.logger.Warn().Err(err).Int("ids", len(ids)).Msg("Feedback lookup failed, using neutral defaults")
		c.rec.emit(Event{Stage: StageFeedback, State: StateFilterScoreSelect, Pass: pass, CountIn: len(ids), Detail: "upstream_unavailable"})
	}
	if exclErr == nil {
		for id, ex := range excluded {
			c.excluded[id] = ex
		}
	}
	if multErr == nil {
		for id, m := range mults {
			c.mults[id] = m
		}
	}
	return nil
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func newController(cfg *Config, deps *Dependencies, logger zerolog.Logger, rec *recorder, rng *rand.Rand, pool []Candidate) *controller {
	c := &controller{
		cfg:      cfg,
		source:   deps.Source,
		feedback: deps.Feedback,
		ladder:   Ladder(&cfg.Relaxation),
		logger:   logger,
		rec:      rec,
		rng:      rng,
		index:    make(map[string]struct{}, len(pool)),
		looked:   make(map[string]struct{}, len(pool)),
		excluded: make(map[string]bool),
		mults:    make(map[string]float64),
	}
	c.pool = make([]Candidate, 0, min(len(pool), cfg.Limits.MaxPool))
	c.merge(pool, 0)
	return c
}
