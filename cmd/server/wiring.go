// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/wayfinder/internal/api"
	"github.com/tomtom215/wayfinder/internal/catalog"
	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/events"
	"github.com/tomtom215/wayfinder/internal/feedback"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/resilience"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/selection/curation"
	"github.com/tomtom215/wayfinder/internal/semantic"
	"github.com/tomtom215/wayfinder/internal/session"
)

// catalogStack is the DuckDB store and its guarded wrapper.
type catalogStack struct {
	store   *catalog.DuckDBStore
	guarded *catalog.Guarded
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*catalogStack, error) {
	db, err := catalog.OpenDuckDB(cfg.Catalog.DuckDBPath)
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewDuckDBStore(ctx, db, cfg.Catalog.FetchLimit)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare catalog: %w", err)
	}

	if cfg.Catalog.SeedFile != "" {
		cands, err := catalog.LoadSeedFile(cfg.Catalog.SeedFile)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if err := store.Upsert(ctx, cands); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info().Str("file", cfg.Catalog.SeedFile).Int("candidates", len(cands)).Msg("Catalog seeded")
	}

	count, err := store.Count(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to count catalog rows")
	} else {
		logger.Info().Int("candidates", count).Msg("Catalog ready")
	}

	guarded := catalog.NewGuarded(store, catalog.GuardConfig{
		Name:      "catalog",
		Breaker:   cfg.Catalog.Breaker,
		PerSecond: cfg.Catalog.PerSecond,
		Burst:     cfg.Catalog.Burst,
	}, logging.WithComponent("catalog"))

	return &catalogStack{store: store, guarded: guarded}, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (c *catalogStack) close(logger zerolog.Logger) {
	if err := c.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing catalog")
	}
}

// ready fails when DuckDB is unreachable or the catalog breaker is open.
func (c *catalogStack) ready(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return err
	}
	if c.guarded.BreakerState() == resilience.StateString(gobreaker.StateOpen) {
		return errors.New("catalog circuit breaker is open")
	}
	return nil
}

// feedbackStack is the Badger database and the provider reading it.
type feedbackStack struct {
	db       *badger.DB
	provider *feedback.Provider
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openFeedback(cfg *config.Config, logger zerolog.Logger) (*feedbackStack, error) {
	db, err := feedback.OpenBadger(cfg.Feedback.BadgerPath)
	if err != nil {
		return nil, err
	}
	if cfg.Feedback.BadgerPath == "" {
		logger.Warn().Msg("Feedback store is in-memory; votes are lost on restart")
	}
	provider := feedback.NewProvider(feedback.NewBadgerStore(db), cfg.Feedback.Provider, logging.WithComponent("feedback"))
	return &feedbackStack{db: db, provider: provider}, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (f *feedbackStack) close(logger zerolog.Logger) {
	if err := f.db.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing feedback store")
	}
}

func (f *feedbackStack) ready(context.Context) error {
	if f.db.IsClosed() {
		return errors.New("feedback store is closed")
	}
	return nil
}

// buildRouter wires the engine, curator and API handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func buildRouter(cfg *config.Config, cat *catalogStack, fb *feedbackStack, bus *events.Bus, logger zerolog.Logger) (http.Handler, error) {
	engine, err := selection.NewEngine(&cfg.Selection, selection.Dependencies{
		Source:   cat.guarded,
		Feedback: fb.provider,
		Sink:     bus,
	}, logging.WithComponent("selection"))
	if err != nil {
		return nil, fmt.Errorf("create selection engine: %w", err)
	}

	var semanticCurator curation.SemanticCurator
	if cfg.Semantic.Endpoint != "" {
		client, err := semantic.NewClient(cfg.Semantic, logger)
		if err != nil {
			return nil, fmt.Errorf("create semantic client: %w", err)
		}
		semanticCurator = client
	}
	curator := curation.NewCurator(semanticCurator, bus, logger)

	handler, err := api.NewHandler(api.Dependencies{
		Selector: engine,
		Curator:  curator,
		Feedback: fb.provider,
		Sessions: session.NewRegistry(),
		Checks: []api.ReadinessCheck{
			{Name: "catalog", Check: cat.ready},
			{Name: "feedback", Check: fb.ready},
		},
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, logger)
	if err != nil {
		return nil, err
	}

	return api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
	}), nil
}
