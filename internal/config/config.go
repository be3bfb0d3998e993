// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/wayfinder/internal/events"
	"github.com/tomtom215/wayfinder/internal/feedback"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/resilience"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/semantic"
	"github.com/tomtom215/wayfinder/internal/supervisor"
)

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig          `koanf:"server"`
	Logging    logging.Config        `koanf:"logging"`
	Selection  selection.Config      `koanf:"selection"`
	Catalog    CatalogConfig         `koanf:"catalog"`
	Feedback   FeedbackConfig        `koanf:"feedback"`
	Semantic   semantic.Config       `koanf:"semantic"`
	Events     events.Config         `koanf:"events"`
	RateLimit  RateLimitConfig       `koanf:"rate_limit"`
	Supervisor supervisor.TreeConfig `koanf:"supervisor"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// CatalogConfig configures the candidate catalog.
type CatalogConfig struct {
	// DuckDBPath is the database file. Empty means in-memory.
	DuckDBPath string `koanf:"duckdb_path"`

	// SeedFile is a JSON file of candidates upserted at startup.
	SeedFile string `koanf:"seed_file"`

	// FetchLimit caps the rows returned per fetch.
	FetchLimit int `koanf:"fetch_limit" validate:"gte=0"`

	PerSecond float64                  `koanf:"per_second" validate:"gte=0"`
	Burst     int                      `koanf:"burst" validate:"gte=0"`
	Breaker   resilience.BreakerConfig `koanf:"breaker"`
}

// FeedbackConfig configures vote storage and lookups.
type FeedbackConfig struct {
	// BadgerPath is the Badger directory. Empty means in-memory.
	BadgerPath string                  `koanf:"badger_path"`
	Provider   feedback.ProviderConfig `koanf:"provider"`
}

// RateLimitConfig configures per-client HTTP rate limiting.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 20,
			CORSOrigins:     []string{"*"},
		},
		Logging:   logging.Config{Level: "info", Format: "json"},
		Selection: *selection.DefaultConfig(),
		Catalog: CatalogConfig{
			FetchLimit: 500,
			PerSecond:  0,
			Burst:      1,
			Breaker:    resilience.DefaultBreakerConfig(),
		},
		Feedback: FeedbackConfig{
			Provider: feedback.DefaultProviderConfig(),
		},
		Semantic: semantic.Config{
			Timeout: 10 * time.Second,
			Breaker: resilience.DefaultBreakerConfig(),
		},
		Events: events.DefaultConfig(),
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
		Supervisor: supervisor.DefaultTreeConfig(),
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
