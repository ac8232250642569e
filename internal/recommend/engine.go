// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/models"
)

// Note: this package depends only on geo and models. Catalog access,
// persistence and metrics live with the callers.

// Engine answers recommendation queries against an artifact set passed in
// by the caller. It holds no model state of its own and is safe for
// concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	requestCount      atomic.Int64
	unavailableCount  atomic.Int64
	invalidReferences atomic.Int64
}

// EngineStats are cumulative request counters.
type EngineStats struct {
	Requests          int64 `json:"requests"`
	ModelUnavailable  int64 `json:"model_unavailable"`
	InvalidReferences int64 `json:"invalid_references"`
}

// query is the resolved, defaulted form of a Request.
type query struct {
	target        models.Venue
	reference     geo.Point
	meanVeg       float64
	meanNonVeg    float64
	n             int
	maxDistanceKm float64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend runs the similar, same_location and price_match passes for the
// target venue against artifacts.
//
// A nil or inconsistent artifact set returns an error wrapping
// ErrModelUnavailable. An invalid reference location is logged and
// replaced by the target venue's own coordinates.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, artifacts *ArtifactSet, req Request) (*Result, error) {
	e.requestCount.Add(1)

	if err := artifacts.Validate(); err != nil {
		e.unavailableCount.Add(1)
		return nil, err
	}

	logger := e.createRequestLogger(req)

	reference, overridden, err := ResolveReference(req.Target, req.Reference)
	if err != nil {
		e.invalidReferences.Add(1)
		logger.Warn().Err(err).Msg("ignoring reference location, using venue coordinates")
	}

	q := e.prepareQuery(artifacts, req, reference)

	result := &Result{
		Reference:           reference,
		ReferenceOverridden: overridden,
		ModelVersion:        artifacts.Version,
	}

	for _, intent := range e.config.Intents() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		list, err := e.runPass(artifacts, &q, intent)
		if err != nil {
			e.unavailableCount.Add(1)
			return nil, fmt.Errorf("%s pass: %w", intent.Intent, err)
		}
		result.setList(intent.Intent, list)
	}

	logger.Debug().
		Int("similar", len(result.Similar)).
		Int("same_location", len(result.SameLocation)).
		Int("price_match", len(result.PriceMatch)).
		Int("model_version", artifacts.Version).
		Msg("recommendation complete")

	return result, nil
}

// prepareQuery applies request defaults.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareQuery(artifacts *ArtifactSet, req Request, reference geo.Point) query {
	q := query{
		target:        req.Target,
		reference:     reference,
		n:             req.N,
		maxDistanceKm: req.MaxDistanceKm,
	}
	if q.n <= 0 {
		q.n = e.config.DefaultN
	}
	if q.n > e.config.MaxN {
		q.n = e.config.MaxN
	}
	if !(q.maxDistanceKm > 0) {
		q.maxDistanceKm = e.config.DefaultMaxDistanceKm
	}
	q.meanVeg, q.meanNonVeg = artifacts.Snapshot.MeanPrices()
	return q
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("venue_id", req.Target.ID).
		Logger()
}

// runPass executes one nearest-neighbor pass for intent.
func (e *Engine) runPass(artifacts *ArtifactSet, q *query, intent QueryIntent) ([]Candidate, error) {
	vec := artifacts.Bundle.Compose(queryInput(q, intent), artifacts.LocationWeight()*intent.CoordMultiplier)

	k := min(e.config.MaxCandidates, artifacts.Snapshot.Len())
	neighbors, err := artifacts.Index.Query(vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	ceiling := q.maxDistanceKm * intent.CeilingFactor
	candidates := make([]Candidate, 0, len(neighbors))
	for _, nb := range neighbors {
		row := &artifacts.Snapshot.Rows[nb.Row]
		if row.ID == q.target.ID {
			continue
		}

		distance := geo.DistanceKm(q.reference.Lng, q.reference.Lat, row.Lng, row.Lat)
		if distance <= ceiling {
			candidates = append(candidates, Candidate{ID: row.ID, DistanceKm: distance})
		}
	}

	// Stable, so equal distances keep index lookup order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	if len(candidates) > q.n {
		candidates = candidates[:q.n]
	}
	return candidates, nil
}

// queryInput selects the price and coordinate inputs for intent.
func queryInput(q *query, intent QueryIntent) FeatureInput {
	in := FeatureInput{CityID: q.target.CityID}

	switch intent.Prices {
	case PriceFromCatalogMean:
		in.VegPrice, in.NonVegPrice = q.meanVeg, q.meanNonVeg
	default:
		in.VegPrice, in.NonVegPrice = q.target.Prices()
	}

	switch intent.Coords {
	case CoordFromReference:
		in.Lat, in.Lng = q.reference.Lat, q.reference.Lng
	default:
		in.Lat, in.Lng = q.target.Lat, q.target.Lng
	}

	return in
}

// ResolveReference picks the location distances are measured from.
// A nil reference resolves to the target's coordinates. An out-of-range
// reference also resolves to the target's coordinates and returns an error
// wrapping ErrInvalidCoordinate so callers can report it.
//
//nolint:gocritic // hugeParam: target passed by value for immutability
func ResolveReference(target models.Venue, reference *geo.Point) (geo.Point, bool, error) {
	if reference == nil {
		return target.Location(), false, nil
	}
	if !reference.Valid() {
		return target.Location(), false, fmt.Errorf("%w: reference %s out of range", ErrInvalidCoordinate, reference)
	}
	return *reference, true, nil
}

// Stats returns cumulative request counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Requests:          e.requestCount.Load(),
		ModelUnavailable:  e.unavailableCount.Load(),
		InvalidReferences: e.invalidReferences.Load(),
	}
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
