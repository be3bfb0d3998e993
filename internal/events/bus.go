// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package events carries selection telemetry over an in-process Watermill
// pub/sub. The engine publishes through Bus.Emit; consumers registered on
// the Bus's router turn the events into metrics and debug logs.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// Topics.
const (
	TopicTelemetry = "selection.telemetry"
	TopicPoison    = "selection.telemetry.poison"
)

// Config configures the Bus.
type Config struct {
	// Buffer is the per-subscriber output buffer.
	Buffer int64 `koanf:"buffer"`

	// CloseTimeout bounds how long Close waits for handlers.
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// MaxRetries is how often a failing handler is retried before the
	// event is moved to TopicPoison.
	MaxRetries int `koanf:"max_retries"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{Buffer: 1024, CloseTimeout: 10 * time.Second, MaxRetries: 2}
}

// Bus publishes selection events and runs their consumers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger zerolog.Logger
}

var _ selection.EventSink = (*Bus)(nil)

// NewBus creates a Bus with the metrics consumer registered.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultConfig().CloseTimeout
	}
	logger = logger.With().Str("component", "events").Logger()
	wmLogger := NewLoggerAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.Buffer}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outermost first: a handler that keeps failing, panics included, is
	// parked on the poison topic so the subscriber is not blocked.
	poison, err := middleware.PoisonQueue(pubsub, TopicPoison)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poison)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          wmLogger,
	}.Middleware)
	router.AddMiddleware(middleware.Recoverer)

	b := &Bus{
		pubsub: pubsub,
		router: router,
		logger: logger,
	}
	b.Handle("telemetry-metrics", b.recordMetrics)
	return b, nil
}

// Handle registers a consumer for telemetry events. It must be called
// before Run. Events that fail to decode are dropped; errors returned by
// fn are retried and then moved to TopicPoison.
func (b *Bus) Handle(name string, fn func(selection.Event) error) {
	b.router.AddConsumerHandler(name, TopicTelemetry, b.pubsub, func(msg *message.Message) error {
		var ev selection.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable telemetry event")
			return nil
		}
		return fn(ev)
	})
}

// Emit publishes ev. It never blocks the caller on consumers and only
// logs publish failures.
func (b *Bus) Emit(ev selection.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Failed to encode telemetry event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("request_id", ev.RequestID)
	msg.Metadata.Set("stage", ev.Stage)
	if err := b.pubsub.Publish(TopicTelemetry, msg); err != nil {
		b.logger.Debug().Err(err).Str("stage", ev.Stage).Msg("Telemetry event not published")
	}
}

// Run processes events until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the router has started its handlers.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close stops the router and the pub/sub.
func (b *Bus) Close() error {
	rerr := b.router.Close()
	perr := b.pubsub.Close()
	if rerr != nil {
		return rerr
	}
	return perr
}

func (b *Bus) recordMetrics(ev selection.Event) error {
	metrics.TelemetryEvents.WithLabelValues(ev.Stage).Inc()
	b.logger.Debug().
		Str("request_id", ev.RequestID).
		Str("stage", ev.Stage).
		Str("state", string(ev.State)).
		Int("pass", ev.Pass).
		Int("count_in", ev.CountIn).
		Int("count_out", ev.CountOut).
		Str("step", ev.Step).
		Msg("Selection event")
	return nil
}
