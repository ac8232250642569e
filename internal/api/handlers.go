// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/service"
)

// Recommender is the part of service.Service the handlers depend on.
type Recommender interface {
	Recommend(ctx context.Context, req service.Request) (*models.RecommendationsResponse, bool, error)
	ModelInfo() (models.ModelInfo, bool)
	PriceDrift(ctx context.Context) (*models.PriceDrift, error)
	Ready(ctx context.Context) service.Readiness
}

// HandlerConfig holds request defaults and limits.
type HandlerConfig struct {
	// DefaultN is used when the request has no n parameter.
	DefaultN int

	// DefaultMaxDistanceKm is used when the request has no
	// max_distance_km parameter.
	DefaultMaxDistanceKm float64

	// RequestTimeout bounds a single recommendation request.
	RequestTimeout time.Duration
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultN:             5,
		DefaultMaxDistanceKm: 15,
		RequestTimeout:       10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c HandlerConfig) Validate() error {
	if c.DefaultN < 1 || c.DefaultN > MaxN {
		return fmt.Errorf("default n must be in [1, %d], got %d", MaxN, c.DefaultN)
	}
	if c.DefaultMaxDistanceKm <= 0 || c.DefaultMaxDistanceKm > MaxDistanceKm {
		return fmt.Errorf("default max_distance_km must be in (0, %g], got %g", float64(MaxDistanceKm), c.DefaultMaxDistanceKm)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

// Handler serves the HTTP endpoints.
type Handler struct {
	svc       Recommender
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler backed by svc.
func NewHandler(svc Recommender, cfg HandlerConfig) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("recommender is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid handler config: %w", err)
	}
	return &Handler{
		svc:       svc,
		cfg:       cfg,
		startTime: time.Now(),
	}, nil
}

// NotFound answers unknown routes with a JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}
