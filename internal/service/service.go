// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/venuerec/internal/cache"
	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/metrics"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/recommend"
	"github.com/tomtom215/venuerec/internal/recommend/storage"
)

// Config holds service-level settings.
type Config struct {
	// PriceTolerance is the relative band used by the fallback
	// price_match list (0.2 = within 20% of the target's prices).
	PriceTolerance float64

	// FallbackScanLimit caps the same-city venues read by the fallback.
	FallbackScanLimit int

	// CacheTTL is how long computed responses are cached.
	CacheTTL time.Duration

	// WarmLimit is the number of venues whose recommendations are
	// precomputed after a model swap. Zero disables warming.
	WarmLimit int

	// WarmConcurrency bounds parallel warm-up requests.
	WarmConcurrency int

	// ComputeTimeout bounds a computation shared by concurrent callers
	// for the same key. It runs detached from any one caller's context.
	ComputeTimeout time.Duration
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		PriceTolerance:    0.2,
		FallbackScanLimit: 200,
		CacheTTL:          5 * time.Minute,
		WarmLimit:         0,
		WarmConcurrency:   4,
		ComputeTimeout:    10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.PriceTolerance < 0 || c.PriceTolerance > 1 {
		return fmt.Errorf("price_tolerance must be in [0, 1], got %f", c.PriceTolerance)
	}
	if c.FallbackScanLimit < 1 {
		return fmt.Errorf("fallback_scan_limit must be positive, got %d", c.FallbackScanLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.WarmLimit < 0 {
		return fmt.Errorf("warm_limit must not be negative, got %d", c.WarmLimit)
	}
	if c.WarmLimit > 0 && c.WarmConcurrency < 1 {
		return fmt.Errorf("warm_concurrency must be positive, got %d", c.WarmConcurrency)
	}
	if c.ComputeTimeout <= 0 {
		return fmt.Errorf("compute_timeout must be positive, got %s", c.ComputeTimeout)
	}
	return nil
}

// Request is a recommendation request as received from a client.
type Request struct {
	VenueID       int64
	Reference     *geo.Point
	N             int
	MaxDistanceKm float64
	RequestID     string
}

// model is the active artifact set with its stored metadata.
type model struct {
	set  *recommend.ArtifactSet
	meta storage.ArtifactMetadata
}

// Service answers recommendation requests. It holds the active artifact
// set, resolves venues through the catalog, degrades to a same-city
// listing when the model is unavailable, and caches computed responses.
type Service struct {
	cfg     Config
	engine  *recommend.Engine
	catalog catalog.Catalog
	cache   cache.Store
	logger  zerolog.Logger

	active atomic.Pointer[model]
	flight singleflight.Group
}

// New creates a service. store may be nil to disable result caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, engine *recommend.Engine, cat catalog.Catalog, store cache.Store, logger zerolog.Logger) (*Service, error) {
	if engine == nil {
		return nil, errors.New("recommendation engine is required")
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	return &Service{
		cfg:     cfg,
		engine:  engine,
		catalog: cat,
		cache:   store,
		logger:  logger.With().Str("component", "service").Logger(),
	}, nil
}

// SetArtifacts installs set as the active model. A nil set clears it.
func (s *Service) SetArtifacts(set *recommend.ArtifactSet, meta *storage.ArtifactMetadata) {
	if set == nil {
		s.active.Store(nil)
		metrics.SetModelVersion(0)
		return
	}

	m := &model{set: set}
	if meta != nil {
		m.meta = *meta
	} else {
		m.meta = storage.ArtifactMetadata{
			Version:        set.Version,
			TrainedAt:      set.TrainedAt,
			VenueCount:     set.Snapshot.Len(),
			CityCount:      set.Snapshot.CityCount(),
			LocationWeight: set.LocationWeight(),
			Checksum:       set.Checksum,
		}
	}
	s.active.Store(m)
	metrics.SetModelVersion(set.Version)
}

// Artifacts returns the active artifact set, or nil.
func (s *Service) Artifacts() *recommend.ArtifactSet {
	if m := s.active.Load(); m != nil {
		return m.set
	}
	return nil
}

// ModelVersion returns the active model version, or 0.
func (s *Service) ModelVersion() int {
	if m := s.active.Load(); m != nil {
		return m.set.Version
	}
	return 0
}

// ModelInfo describes the active model. ok is false when none is loaded.
func (s *Service) ModelInfo() (info models.ModelInfo, ok bool) {
	m := s.active.Load()
	if m == nil {
		return models.ModelInfo{}, false
	}
	return models.ModelInfo{
		Version:        m.meta.Version,
		TrainedAt:      m.meta.TrainedAt,
		VenueCount:     m.meta.VenueCount,
		CityCount:      m.meta.CityCount,
		LocationWeight: m.meta.LocationWeight,
		Checksum:       m.meta.Checksum,
	}, true
}

// PriceDrift compares the catalog's mean prices with the active model's
// snapshot, which shows how stale the model's price features have become.
func (s *Service) PriceDrift(ctx context.Context) (*models.PriceDrift, error) {
	m := s.active.Load()
	if m == nil {
		return nil, recommend.ErrModelUnavailable
	}

	veg, nonVeg, err := s.catalog.MeanPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog mean prices: %w", err)
	}
	modelVeg, modelNonVeg := m.set.Snapshot.MeanPrices()

	return &models.PriceDrift{
		ModelMeanVeg:      modelVeg,
		ModelMeanNonVeg:   modelNonVeg,
		CatalogMeanVeg:    veg,
		CatalogMeanNonVeg: nonVeg,
		VegChange:         relativeChange(modelVeg, veg),
		NonVegChange:      relativeChange(modelNonVeg, nonVeg),
	}, nil
}

func relativeChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from
}

// Catalog returns the catalog the service reads from.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog
}

// Recommend returns the three ranked lists for req.VenueID. cached
// reports whether the response came from the result cache.
//
// Errors wrap catalog.ErrNotFound for unknown venues and
// catalog.ErrUnavailable when the catalog breaker is open. Model
// failures never surface: they degrade to the same-city fallback.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) Recommend(ctx context.Context, req Request) (resp *models.RecommendationsResponse, cached bool, err error) {
	start := time.Now()
	outcome := metrics.OutcomeError
	defer func() {
		metrics.RecordRecommendation(outcome, time.Since(start))
	}()

	target, err := s.catalog.Get(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			outcome = metrics.OutcomeNotFound
		}
		return nil, false, fmt.Errorf("venue %d: %w", req.VenueID, err)
	}

	if _, _, refErr := recommend.ResolveReference(*target, req.Reference); refErr != nil {
		metrics.RecordInvalidReference()
	}

	n, maxDistance := s.normalize(req)
	current := s.active.Load()
	key := s.cacheKey(current, req.VenueID, req.Reference, n, maxDistance)

	if current != nil {
		if hit := s.cacheGet(ctx, key); hit != nil {
			outcome = metrics.OutcomeCached
			return hit, true, nil
		}
	}

	resp, err = s.computeShared(ctx, key, current, *target, req, n, maxDistance)
	if err != nil {
		return nil, false, err
	}

	if resp.Degraded {
		outcome = metrics.OutcomeDegraded
	} else {
		outcome = metrics.OutcomeOK
		s.cacheSet(ctx, key, resp)
	}
	metrics.RecordListSizes(len(resp.Similar), len(resp.SameLocation), len(resp.PriceMatch))
	return resp, false, nil
}

// computeShared collapses concurrent computations for key into one. The
// shared work runs on a context detached from ctx and bounded by
// ComputeTimeout, so a caller that gives up only abandons its own wait.
//
//nolint:gocritic // hugeParam: target and req passed by value for immutability
func (s *Service) computeShared(ctx context.Context, key string, m *model, target models.Venue, req Request, n int, maxDistance float64) (*models.RecommendationsResponse, error) {
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ComputeTimeout)
		defer cancel()
		return s.compute(workCtx, m, target, req, n, maxDistance)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.RecommendationsResponse), nil
	}
}

// compute runs the engine against m, falling back on ErrModelUnavailable.
//
//nolint:gocritic // hugeParam: target and req passed by value for immutability
func (s *Service) compute(ctx context.Context, m *model, target models.Venue, req Request, n int, maxDistance float64) (*models.RecommendationsResponse, error) {
	var set *recommend.ArtifactSet
	if m != nil {
		set = m.set
	}

	result, err := s.engine.Recommend(ctx, set, recommend.Request{
		Target:        target,
		Reference:     req.Reference,
		N:             n,
		MaxDistanceKm: maxDistance,
		RequestID:     req.RequestID,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrModelUnavailable) {
			s.logger.Warn().
				Err(err).
				Int64("venue_id", target.ID).
				Str("request_id", req.RequestID).
				Msg("model unavailable, serving same-city fallback")
			metrics.RecordFallback()
			return s.fallback(ctx, target, req.Reference, n)
		}
		return nil, err
	}

	return s.hydrate(ctx, target, result)
}

// hydrate turns ranked candidate IDs into venue records. The catalog
// fetch is set-based and returns rows in no particular order, so each
// list is rebuilt in the engine's rank order. IDs that have disappeared
// from the catalog since training are dropped.
//
//nolint:gocritic // hugeParam: target passed by value for immutability
func (s *Service) hydrate(ctx context.Context, target models.Venue, result *recommend.Result) (*models.RecommendationsResponse, error) {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(result.Similar)+len(result.SameLocation)+len(result.PriceMatch))
	for _, intent := range recommend.AllIntents {
		for _, c := range result.List(intent) {
			if _, dup := seen[c.ID]; !dup {
				seen[c.ID] = struct{}{}
				ids = append(ids, c.ID)
			}
		}
	}

	byID := make(map[int64]models.Venue, len(ids))
	if len(ids) > 0 {
		venues, err := s.catalog.FetchByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("fetch recommended venues: %w", err)
		}
		for i := range venues {
			byID[venues[i].ID] = venues[i]
		}
	}

	rank := func(list []recommend.Candidate) []models.RecommendedVenue {
		out := make([]models.RecommendedVenue, 0, len(list))
		for _, c := range list {
			v, ok := byID[c.ID]
			if !ok {
				continue
			}
			out = append(out, models.RecommendedVenue{Venue: v, Rank: len(out) + 1, DistanceKm: c.DistanceKm})
		}
		return out
	}

	source := "venue"
	if result.ReferenceOverridden {
		source = "request"
	}

	return &models.RecommendationsResponse{
		Venue:        target,
		Similar:      rank(result.Similar),
		SameLocation: rank(result.SameLocation),
		PriceMatch:   rank(result.PriceMatch),
		Reference: models.ReferenceLocation{
			Lat:    result.Reference.Lat,
			Lng:    result.Reference.Lng,
			Source: source,
		},
		ModelVersion: result.ModelVersion,
	}, nil
}

// normalize applies the engine's defaults so equivalent requests share
// a cache key.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) normalize(req Request) (n int, maxDistance float64) {
	cfg := s.engine.GetConfig()
	n = req.N
	if n <= 0 {
		n = cfg.DefaultN
	}
	if n > cfg.MaxN {
		n = cfg.MaxN
	}
	maxDistance = req.MaxDistanceKm
	if !(maxDistance > 0) {
		maxDistance = cfg.DefaultMaxDistanceKm
	}
	return n, maxDistance
}

// keyParams is the cached request shape.
type keyParams struct {
	N           int        `json:"n"`
	MaxDistance float64    `json:"max_distance_km"`
	Reference   *geo.Point `json:"reference,omitempty"`
}

// cacheKey builds the result cache and singleflight key.
func (s *Service) cacheKey(m *model, venueID int64, ref *geo.Point, n int, maxDistance float64) string {
	version := 0
	if m != nil {
		version = m.set.Version
	}
	if ref != nil && !ref.Valid() {
		ref = nil
	}
	return cache.RecommendationKey(version, venueID, keyParams{N: n, MaxDistance: maxDistance, Reference: ref})
}

// cacheGet returns a cached response, or nil. Backend errors are
// logged and treated as misses.
func (s *Service) cacheGet(ctx context.Context, key string) *models.RecommendationsResponse {
	if s.cache == nil {
		return nil
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError(s.cache.Name())
		s.logger.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		return nil
	}
	metrics.RecordCacheAccess(s.cache.Name(), ok)
	if !ok {
		return nil
	}

	var resp models.RecommendationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.RecordCacheError(s.cache.Name())
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		_ = s.cache.Delete(ctx, key) //nolint:errcheck // best effort
		return nil
	}
	return &resp
}

// cacheSet stores resp. Failures are logged only.
func (s *Service) cacheSet(ctx context.Context, key string, resp *models.RecommendationsResponse) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		metrics.RecordCacheError(s.cache.Name())
		s.logger.Warn().Err(err).Str("key", key).Msg("result cache write failed")
	}
}
