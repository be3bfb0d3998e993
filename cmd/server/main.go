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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/events"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/supervisor"
	"github.com/tomtom215/wayfinder/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logger := logging.Logger()
		logger.Fatal().Err(err).Msg("Wayfinder stopped with an error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	cfg.Logging.Output = os.Stderr
	logging.Init(cfg.Logging)
	logger := logging.Logger()
	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("duckdb_path", cfg.Catalog.DuckDBPath).
		Str("badger_path", cfg.Feedback.BadgerPath).
		Bool("semantic", cfg.Semantic.Endpoint != "").
		Msg("Starting Wayfinder")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cat.close(logger)

	fb, err := openFeedback(cfg, logger)
	if err != nil {
		return err
	}
	defer fb.close(logger)

	bus, err := events.NewBus(cfg.Events, logging.WithComponent("events"))
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}

	router, err := buildRouter(cfg, cat, fb, bus, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), cfg.Supervisor)
	tree.AddEventsService(services.NewEventRouterService(bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logger.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, repErr := tree.UnstoppedServiceReport(); repErr == nil && len(report) > 0 {
		logger.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	logger.Info().Msg("Wayfinder stopped")
	return nil
}
