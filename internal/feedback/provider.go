// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/cache"
	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// BatchStore is implemented by stores that can read many tallies at once.
type BatchStore interface {
	Tallies(ctx context.Context, ids []string) (map[string]Tally, error)
}

// ProviderConfig tunes the Provider.
type ProviderConfig struct {
	CacheSize      int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	MaxConcurrency int           `koanf:"max_concurrency" validate:"gte=0"`
	BatchSize      int           `koanf:"batch_size" validate:"gte=0"`
	LookupTimeout  time.Duration `koanf:"lookup_timeout"`
}

// DefaultProviderConfig returns the production defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		CacheSize:      5000,
		CacheTTL:       time.Minute,
		MaxConcurrency: 8,
		BatchSize:      64,
		LookupTimeout:  500 * time.Millisecond,
	}
}

// Provider serves feedback signals from a Store through an LRU cache.
// Cache misses are loaded in batches fanned out over at most
// MaxConcurrency goroutines. A batch that fails or times out resolves
// to neutral values and is not cached.
type Provider struct {
	store  Store
	cache  *cache.LRU[string, Tally]
	cfg    ProviderConfig
	logger zerolog.Logger
}

var _ selection.FeedbackProvider = (*Provider)(nil)

// NewProvider creates a provider. Zero config fields take defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProvider(store Store, cfg ProviderConfig, logger zerolog.Logger) *Provider {
	def := DefaultProviderConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = def.LookupTimeout
	}
	return &Provider{
		store:  store,
		cache:  cache.NewLRU[string, Tally](cfg.CacheSize, cfg.CacheTTL),
		cfg:    cfg,
		logger: logger.With().Str("component", "feedback").Logger(),
	}
}

// Excluded returns the ids whose feedback says they should be avoided.
func (p *Provider) Excluded(ctx context.Context, ids []string) (map[string]bool, error) {
	tallies, err := p.tallies(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for id, t := range tallies {
		if t.ShouldAvoid() {
			out[id] = true
		}
	}
	return out, nil
}

// Multipliers returns a score multiplier for every id.
func (p *Provider) Multipliers(ctx context.Context, ids []string) (map[string]float64, error) {
	tallies, err := p.tallies(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = NeutralMultiplier
		if t, ok := tallies[id]; ok {
			out[id] = t.Multiplier()
		}
	}
	return out, nil
}

// Tally returns the current tally for one candidate, bypassing the cache.
func (p *Provider) Tally(ctx context.Context, candidateID string) (Tally, error) {
	t, err := p.store.Tally(ctx, candidateID)
	if err != nil {
		return Tally{}, err
	}
	p.cache.Add(candidateID, t)
	return t, nil
}

// Record stores a vote and refreshes the cached tally.
func (p *Provider) Record(ctx context.Context, candidateID string, vote Vote) (Tally, error) {
	t, err := p.store.Record(ctx, candidateID, vote)
	if err != nil {
		return Tally{}, err
	}
	p.cache.Add(candidateID, t)
	metrics.FeedbackVotes.WithLabelValues(string(vote)).Inc()
	p.logger.Debug().
		Str("candidate_id", candidateID).
		Str("vote", string(vote)).
		Int("up", t.Up).
		Int("down", t.Down).
		Msg("Feedback recorded")
	return t, nil
}

// tallies resolves ids from the cache and the store. Only cancellation
// of ctx is returned as an error.
func (p *Provider) tallies(ctx context.Context, ids []string) (map[string]Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]Tally, len(ids))
	var misses []string
	for _, id := range ids {
		if t, ok := p.cache.Get(id); ok {
			out[id] = t
			metrics.FeedbackLookups.WithLabelValues("hit").Inc()
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}
	metrics.FeedbackLookups.WithLabelValues("miss").Add(float64(len(misses)))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.cfg.MaxConcurrency)
	)
	for start := 0; start < len(misses); start += p.cfg.BatchSize {
		batch := misses[start:min(start+p.cfg.BatchSize, len(misses))]

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			loaded, err := p.load(ctx, batch)
			if err != nil {
				metrics.FeedbackLookups.WithLabelValues("error").Add(float64(len(batch)))
				p.logger.Warn().Err(err).Int("ids", len(batch)).Msg("Feedback lookup failed, using neutral values")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for id, t := range loaded {
				out[id] = t
				p.cache.Add(id, t)
			}
		}(batch)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) load(ctx context.Context, ids []string) (map[string]Tally, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.LookupTimeout)
	defer cancel()

	if bs, ok := p.store.(BatchStore); ok {
		return bs.Tallies(ctx, ids)
	}
	out := make(map[string]Tally, len(ids))
	for _, id := range ids {
		t, err := p.store.Tally(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", selection.ErrUpstreamUnavailable, err)
		}
		out[id] = t
	}
	return out, nil
}
