// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/validation"
)

// ErrNotFound is returned by Get when no venue has the requested ID.
var ErrNotFound = errors.New("venue not found")

// Backend names accepted by Open.
const (
	BackendDuckDB = "duckdb"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Catalog is the read side of venue storage used by the trainer and the
// recommendation service, plus Upsert for seeding and imports.
type Catalog interface {
	// FetchByIDs returns the venues with the given IDs. Unknown IDs are
	// skipped and the order of the result is not guaranteed.
	FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error)

	// MeanPrices returns the catalog-wide mean veg and non-veg prices,
	// counting missing prices as zero. An empty catalog yields zeros.
	MeanPrices(ctx context.Context) (veg, nonVeg float64, err error)

	// ListAll returns every venue ordered by ID ascending.
	ListAll(ctx context.Context) ([]models.Venue, error)

	// ListByCity returns up to limit venues in cityID other than
	// excludeID, ordered by ID ascending.
	ListByCity(ctx context.Context, cityID, excludeID int64, limit int) ([]models.Venue, error)

	// Get returns one venue or ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Venue, error)

	// Upsert inserts or replaces venues by ID.
	Upsert(ctx context.Context, venues []models.Venue) error

	// Count returns the number of venues.
	Count(ctx context.Context) (int, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	// Close releases backend resources.
	Close() error
}

// ValidateVenues checks every venue and rejects duplicate IDs in one batch.
func ValidateVenues(venues []models.Venue) error {
	seen := make(map[int64]struct{}, len(venues))
	for i := range venues {
		if verr := validation.ValidateStruct(&venues[i]); verr != nil {
			return fmt.Errorf("venue %d (index %d): %w", venues[i].ID, i, verr)
		}
		if _, dup := seen[venues[i].ID]; dup {
			return fmt.Errorf("duplicate venue id %d", venues[i].ID)
		}
		seen[venues[i].ID] = struct{}{}
	}
	return nil
}

// meanPrices averages zero-filled prices over venues.
func meanPrices(venues []models.Venue) (veg, nonVeg float64) {
	if len(venues) == 0 {
		return 0, 0
	}
	for i := range venues {
		v, nv := venues[i].Prices()
		veg += v
		nonVeg += nv
	}
	n := float64(len(venues))
	return veg / n, nonVeg / n
}

// sortByID orders venues by ID ascending in place.
func sortByID(venues []models.Venue) {
	sort.Slice(venues, func(i, j int) bool { return venues[i].ID < venues[j].ID })
}

// cloneVenue deep-copies v so callers cannot alias stored price pointers.
//
//nolint:gocritic // value in, value out
func cloneVenue(v models.Venue) models.Venue {
	if v.VegPrice != nil {
		v.VegPrice = models.Price(*v.VegPrice)
	}
	if v.NonVegPrice != nil {
		v.NonVegPrice = models.Price(*v.NonVegPrice)
	}
	return v
}
