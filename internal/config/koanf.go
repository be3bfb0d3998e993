// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wayfinder/config.yaml",
	"/etc/wayfinder/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings maps lower-cased environment variables to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_max_body_bytes":   "server.max_body_bytes",
	"cors_origins":            "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"selection_match_ratio":          "selection.diversity.match_ratio",
	"selection_never_recommend_tags": "selection.filter.never_recommend_tags",
	"selection_weather_threshold":    "selection.filter.weather_suitability_threshold",
	"selection_keyword_threshold":    "selection.filter.keyword_confidence_threshold",
	"selection_search_everywhere_km": "selection.filter.search_everywhere_km",
	"selection_fetch_timeout":        "selection.relaxation.fetch_timeout",
	"selection_feedback_timeout":     "selection.relaxation.feedback_timeout",
	"selection_max_n":                "selection.limits.max_n",
	"selection_default_n":            "selection.limits.default_n",
	"selection_max_pool":             "selection.limits.max_pool",

	"catalog_duckdb_path": "catalog.duckdb_path",
	"catalog_seed_file":   "catalog.seed_file",
	"catalog_fetch_limit": "catalog.fetch_limit",
	"catalog_per_second":  "catalog.per_second",
	"catalog_burst":       "catalog.burst",

	"feedback_badger_path":     "feedback.badger_path",
	"feedback_cache_size":      "feedback.provider.cache_size",
	"feedback_cache_ttl":       "feedback.provider.cache_ttl",
	"feedback_max_concurrency": "feedback.provider.max_concurrency",
	"feedback_lookup_timeout":  "feedback.provider.lookup_timeout",

	"semantic_endpoint":   "semantic.endpoint",
	"semantic_api_key":    "semantic.api_key",
	"semantic_timeout":    "semantic.timeout",
	"semantic_per_second": "semantic.per_second",
	"semantic_burst":      "semantic.burst",

	"events_buffer":      "events.buffer",
	"events_max_retries": "events.max_retries",

	"rate_limit_enabled":  "rate_limit.enabled",
	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// sliceConfigPaths accept comma-separated values from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"selection.filter.never_recommend_tags",
}

// Load builds the configuration from defaults, the config file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envKey(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
