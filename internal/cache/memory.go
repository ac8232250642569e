// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package cache

import (
	"context"
	"time"
)

// MemoryStore adapts Cache to Store for single-process deployments.
type MemoryStore struct {
	cache *Cache
}

// NewMemoryStore creates an in-process store. ttl <= 0 defaults to five
// minutes.
func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStore{cache: New(ttl, maxEntries, time.Minute)}
}

// Name implements Store.
func (m *MemoryStore) Name() string { return BackendMemory }

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, ok := m.cache.Get(key)
	return data, ok, nil
}

// Set implements Store. ttl <= 0 uses the store default.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		m.cache.Set(key, value)
		return nil
	}
	m.cache.SetWithTTL(key, value, ttl)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

// Stats returns the underlying cache statistics.
func (m *MemoryStore) Stats() Stats {
	return m.cache.GetStats()
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.cache.Close()
	return nil
}
