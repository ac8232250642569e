// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/cache"
	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/recommend"
)

// exampleVenues: A and B are 1.5 km apart in city 10, C is in city 20.
func exampleVenues() []models.Venue {
	return []models.Venue{
		{ID: 1, Name: "A", Slug: "a", CityID: 10, Lat: 27.70, Lng: 85.30, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
		{ID: 2, Name: "B", Slug: "b", CityID: 10, Lat: 27.71, Lng: 85.31, VegPrice: models.Price(320), NonVegPrice: models.Price(520)},
		{ID: 3, Name: "C", Slug: "c", CityID: 20, Lat: 28.20, Lng: 84.00, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
	}
}

// fallbackVenues adds same-city venues inside and outside the price band
// of venue 1 (300/500).
func fallbackVenues() []models.Venue {
	return append(exampleVenues(),
		models.Venue{ID: 4, Name: "D", CityID: 10, Lat: 27.72, Lng: 85.32, VegPrice: models.Price(1000), NonVegPrice: models.Price(2000)},
		models.Venue{ID: 5, Name: "E", CityID: 10, Lat: 27.69, Lng: 85.29, VegPrice: models.Price(310), NonVegPrice: models.Price(490)},
	)
}

func trainSet(t *testing.T, venues []models.Venue, version int) *recommend.ArtifactSet {
	t.Helper()
	set, err := recommend.Train(venues, recommend.DefaultModelConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	set.Version = version
	return set
}

func newService(t *testing.T, cat catalog.Catalog, store cache.Store) *Service {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	svc, err := New(DefaultConfig(), engine, cat, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func venueIDs(list []models.RecommendedVenue) []int64 {
	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	return ids
}

// reversingCatalog returns FetchByIDs results in reverse order.
type reversingCatalog struct {
	*catalog.MemoryCatalog
}

func (r reversingCatalog) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	venues, err := r.MemoryCatalog.FetchByIDs(ctx, ids)
	for i, j := 0, len(venues)-1; i < j; i, j = i+1, j-1 {
		venues[i], venues[j] = venues[j], venues[i]
	}
	return venues, err
}

var errCatalogDown = errors.New("catalog down")

// downCatalog fails every call.
type downCatalog struct {
	*catalog.MemoryCatalog
}

func (downCatalog) Get(context.Context, int64) (*models.Venue, error) { return nil, errCatalogDown }
func (downCatalog) Count(context.Context) (int, error)                { return 0, errCatalogDown }
func (downCatalog) MeanPrices(context.Context) (veg, nonVeg float64, err error) {
	return 0, 0, errCatalogDown
}

// gatedCatalog blocks FetchByIDs until release is closed or the call's
// context ends, and remembers the context error of the last fetch.
type gatedCatalog struct {
	*catalog.MemoryCatalog

	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu      sync.Mutex
	lastErr error
}

func newGatedCatalog(venues ...models.Venue) *gatedCatalog {
	return &gatedCatalog{
		MemoryCatalog: catalog.NewMemoryCatalog(venues...),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (g *gatedCatalog) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	g.once.Do(func() { close(g.entered) })

	select {
	case <-g.release:
	case <-ctx.Done():
	}

	g.mu.Lock()
	g.lastErr = ctx.Err()
	g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.MemoryCatalog.FetchByIDs(ctx, ids)
}

func (g *gatedCatalog) fetchErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}
