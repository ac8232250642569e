// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/venuerec/internal/models"
)

// MemoryCatalog is a map-backed catalog for tests and local development.
type MemoryCatalog struct {
	mu     sync.RWMutex
	venues map[int64]models.Venue
}

// NewMemoryCatalog creates a catalog seeded with venues.
func NewMemoryCatalog(venues ...models.Venue) *MemoryCatalog {
	c := &MemoryCatalog{venues: make(map[int64]models.Venue, len(venues))}
	for i := range venues {
		c.venues[venues[i].ID] = cloneVenue(venues[i])
	}
	return c
}

// Name implements Catalog.
func (c *MemoryCatalog) Name() string { return BackendMemory }

// Close implements Catalog.
func (c *MemoryCatalog) Close() error { return nil }

// FetchByIDs implements Catalog.
func (c *MemoryCatalog) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Venue, 0, len(ids))
	for _, id := range ids {
		if v, ok := c.venues[id]; ok {
			out = append(out, cloneVenue(v))
		}
	}
	return out, nil
}

// MeanPrices implements Catalog.
func (c *MemoryCatalog) MeanPrices(ctx context.Context) (veg, nonVeg float64, err error) {
	all, err := c.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	veg, nonVeg = meanPrices(all)
	return veg, nonVeg, nil
}

// ListAll implements Catalog.
func (c *MemoryCatalog) ListAll(ctx context.Context) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Venue, 0, len(c.venues))
	for _, v := range c.venues {
		out = append(out, cloneVenue(v))
	}
	sortByID(out)
	return out, nil
}

// ListByCity implements Catalog.
func (c *MemoryCatalog) ListByCity(ctx context.Context, cityID, excludeID int64, limit int) ([]models.Venue, error) {
	all, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []models.Venue{}, nil
	}

	out := make([]models.Venue, 0, limit)
	for i := range all {
		if len(out) >= limit {
			break
		}
		if all[i].CityID == cityID && all[i].ID != excludeID {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Get implements Catalog.
func (c *MemoryCatalog) Get(ctx context.Context, id int64) (*models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.venues[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	clone := cloneVenue(v)
	return &clone, nil
}

// Upsert implements Catalog.
func (c *MemoryCatalog) Upsert(ctx context.Context, venues []models.Venue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateVenues(venues); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range venues {
		c.venues[venues[i].ID] = cloneVenue(venues[i])
	}
	return nil
}

// Count implements Catalog.
func (c *MemoryCatalog) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.venues), nil
}
