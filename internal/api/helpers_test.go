// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/recommend"
	"github.com/tomtom215/venuerec/internal/service"
)

// envelope is models.APIResponse with the payload left undecoded.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// exampleVenues: A and B are 1.5 km apart in city 10, C is in city 20.
func exampleVenues() []models.Venue {
	return []models.Venue{
		{ID: 1, Name: "A", Slug: "a", CityID: 10, Lat: 27.70, Lng: 85.30, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
		{ID: 2, Name: "B", Slug: "b", CityID: 10, Lat: 27.71, Lng: 85.31, VegPrice: models.Price(320), NonVegPrice: models.Price(520)},
		{ID: 3, Name: "C", Slug: "c", CityID: 20, Lat: 28.20, Lng: 84.00, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
	}
}

// newTestService returns a service over exampleVenues. When trained is
// true a version 1 model is loaded.
func newTestService(t *testing.T, trained bool) *service.Service {
	t.Helper()
	venues := exampleVenues()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	svc, err := service.New(service.DefaultConfig(), engine, catalog.NewMemoryCatalog(venues...), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("service.New() error = %v", err)
	}
	if trained {
		set, err := recommend.Train(venues, recommend.DefaultModelConfig())
		if err != nil {
			t.Fatalf("Train() error = %v", err)
		}
		set.Version = 1
		svc.SetArtifacts(set, nil)
	}
	return svc
}

func newTestRouter(t *testing.T, svc Recommender, config *MiddlewareConfig) http.Handler {
	t.Helper()
	h, err := NewHandler(svc, DefaultHandlerConfig())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if config == nil {
		config = DefaultMiddlewareConfig()
		config.RateLimitDisabled = true
	}
	return NewRouter(h, config).Setup()
}

func get(router http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// stubRecommender returns canned results and records requests.
type stubRecommender struct {
	mu        sync.Mutex
	requests  []service.Request
	resp      *models.RecommendationsResponse
	err       error
	info      models.ModelInfo
	hasModel  bool
	drift     *models.PriceDrift
	driftErr  error
	readiness service.Readiness
}

func (s *stubRecommender) Recommend(_ context.Context, req service.Request) (*models.RecommendationsResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, false, s.err
	}
	resp := s.resp
	if resp == nil {
		resp = &models.RecommendationsResponse{Venue: models.Venue{ID: req.VenueID}}
	}
	return resp, false, nil
}

func (s *stubRecommender) ModelInfo() (models.ModelInfo, bool) { return s.info, s.hasModel }

func (s *stubRecommender) PriceDrift(context.Context) (*models.PriceDrift, error) {
	return s.drift, s.driftErr
}

func (s *stubRecommender) Ready(context.Context) service.Readiness { return s.readiness }

func (s *stubRecommender) lastRequest(t *testing.T) service.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no request reached the recommender")
	}
	return s.requests[len(s.requests)-1]
}
