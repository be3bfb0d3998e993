// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package semantic is the HTTP client for an external, LLM-backed curation
// service. It returns the service's answer as-is; validating that answer
// against the candidate pool is the curation package's responsibility.
package semantic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/resilience"
	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/selection/curation"
)

const maxResponseBytes = 1 << 20

// Config configures the client.
type Config struct {
	Endpoint  string        `koanf:"endpoint"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
	PerSecond float64       `koanf:"per_second"`
	Burst     int           `koanf:"burst"`

	Breaker resilience.BreakerConfig `koanf:"breaker"`
}

// Client calls the curation service.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *resilience.Breaker[*selection.CurationResult]
	limiter *resilience.Limiter
	logger  zerolog.Logger
}

var _ curation.SemanticCurator = (*Client)(nil)

// NewClient creates a client. An empty endpoint is an error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("semantic curator endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.NewBreaker[*selection.CurationResult]("semantic-curator", cfg.Breaker, logger),
		limiter: resilience.NewLimiter("semantic-curator", cfg.PerSecond, cfg.Burst),
		logger:  logger.With().Str("component", "semantic").Logger(),
	}, nil
}

type wireItem struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Bucket             selection.Bucket `json:"bucket,omitempty"`
	Rating             *float64         `json:"rating,omitempty"`
	Distance           *float64         `json:"distance,omitempty"`
	WeatherSuitability *float64         `json:"weather_suitability,omitempty"`
	Description        string           `json:"description,omitempty"`
	Tags               []string         `json:"tags,omitempty"`
}

type wireFilter struct {
	Buckets []selection.Bucket `json:"buckets,omitempty"`
	Energy  string             `json:"energy,omitempty"`
	Query   string             `json:"query,omitempty"`
}

type wireRequest struct {
	N      int        `json:"n"`
	Items  []wireItem `json:"items"`
	Filter wireFilter `json:"filter_spec"`
}

type wireResult struct {
	TopIDs    []string            `json:"top_ids"`
	Clusters  []selection.Cluster `json:"clusters"`
	Summaries []selection.Summary `json:"summaries"`
	Reasoning string              `json:"reasoning"`
}

type wireResponse struct {
	Success bool        `json:"success"`
	Data    *wireResult `json:"data"`
	Error   string      `json:"error"`
}

// Curate asks the service to pick n items from pool.
func (c *Client) Curate(ctx context.Context, pool []selection.Candidate, spec *selection.ConstraintSpec, n int) (*selection.CurationResult, error) {
	if err := c.limiter.Allow(); err != nil {
		return nil, fmt.Errorf("%w: %w", selection.ErrUpstreamUnavailable, err)
	}

	body, err := json.Marshal(buildRequest(pool, spec, n))
	if err != nil {
		return nil, fmt.Errorf("marshal curation request: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (*selection.CurationResult, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", selection.ErrUpstreamUnavailable, err)
	}
	c.logger.Debug().Int("items", len(pool)).Int("returned", len(result.IDs)).Dur("latency", time.Since(start)).Msg("Semantic curation received")
	return result, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*selection.CurationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read curation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("curation service returned %d", resp.StatusCode)
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, fmt.Errorf("decode curation response: %w", err)
	}
	if !wr.Success || wr.Data == nil {
		msg := wr.Error
		if msg == "" {
			msg = "curation failed"
		}
		return nil, errors.New(msg)
	}

	return &selection.CurationResult{
		IDs:       wr.Data.TopIDs,
		Summaries: wr.Data.Summaries,
		Clusters:  wr.Data.Clusters,
		Reasoning: wr.Data.Reasoning,
	}, nil
}

func buildRequest(pool []selection.Candidate, spec *selection.ConstraintSpec, n int) wireRequest {
	req := wireRequest{N: n, Items: make([]wireItem, len(pool))}
	for i := range pool {
		c := &pool[i]
		req.Items[i] = wireItem{
			ID:                 c.ID,
			Name:               c.Name,
			Bucket:             c.Bucket,
			Rating:             c.Rating,
			Distance:           c.DistanceKM,
			WeatherSuitability: c.WeatherSuitability,
			Description:        c.Description,
			Tags:               c.Tags,
		}
	}
	if spec != nil {
		req.Filter.Buckets = spec.Buckets
		req.Filter.Query = spec.Query
		if spec.EnergyPreference != selection.EnergyUnknown {
			req.Filter.Energy = spec.EnergyPreference.String()
		}
	}
	return req
}
