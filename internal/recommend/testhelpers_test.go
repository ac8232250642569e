// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/models"
)

// exampleCatalog is the three-venue catalog from the design notes:
// A and B are 1.5 km apart in city 10, C is in city 20 well over 100 km away.
func exampleCatalog() []models.Venue {
	return []models.Venue{
		{ID: 1, Name: "A", CityID: 10, Lat: 27.70, Lng: 85.30, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
		{ID: 2, Name: "B", CityID: 10, Lat: 27.71, Lng: 85.31, VegPrice: models.Price(320), NonVegPrice: models.Price(520)},
		{ID: 3, Name: "C", CityID: 20, Lat: 28.20, Lng: 84.00, VegPrice: models.Price(300), NonVegPrice: models.Price(500)},
	}
}

// randomCatalog generates n venues spread over three city clusters.
func randomCatalog(seed int64, n int) []models.Venue {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	centers := []struct {
		city     int64
		lat, lng float64
	}{
		{10, 27.70, 85.32},
		{20, 28.21, 83.99},
		{30, 26.45, 87.27},
	}

	venues := make([]models.Venue, n)
	for i := range venues {
		c := centers[rng.Intn(len(centers))]
		v := models.Venue{
			ID:     int64(1000 + n - i), // reverse order to exercise sorting
			CityID: c.city,
			Lat:    c.lat + (rng.Float64()-0.5)*0.4,
			Lng:    c.lng + (rng.Float64()-0.5)*0.4,
		}
		if rng.Intn(10) > 0 {
			v.VegPrice = models.Price(float64(200 + rng.Intn(400)))
		}
		if rng.Intn(10) > 0 {
			v.NonVegPrice = models.Price(float64(400 + rng.Intn(600)))
		}
		venues[i] = v
	}
	return venues
}

// mustTrain trains with the default model config or fails the test.
func mustTrain(t *testing.T, venues []models.Venue) *ArtifactSet {
	t.Helper()
	set, err := Train(venues, DefaultModelConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	set.Version = 1
	return set
}

// newTestEngine creates an engine with default config and a silent logger.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}
