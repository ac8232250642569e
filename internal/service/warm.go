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

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/venuerec/internal/catalog"
)

// WarmFromModel precomputes default recommendations for the first
// WarmLimit venues of the active snapshot. It does nothing when warming
// or caching is disabled.
func (s *Service) WarmFromModel(ctx context.Context) (int, error) {
	set := s.Artifacts()
	if s.cfg.WarmLimit == 0 || s.cache == nil || set == nil {
		return 0, nil
	}

	rows := set.Snapshot.Rows
	ids := make([]int64, 0, min(s.cfg.WarmLimit, len(rows)))
	for i := 0; i < len(rows) && len(ids) < s.cfg.WarmLimit; i++ {
		ids = append(ids, rows[i].ID)
	}
	return s.Warm(ctx, ids, s.cfg.WarmConcurrency)
}

// Warm computes and caches default recommendations for venueIDs with at
// most concurrency requests in flight. Venues missing from the catalog
// are skipped. It returns the number of venues warmed.
func (s *Service) Warm(ctx context.Context, venueIDs []int64, concurrency int) (int, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var warmed atomic.Int64
	for _, id := range venueIDs {
		g.Go(func() error {
			_, _, err := s.Recommend(gctx, Request{VenueID: id, RequestID: "warm"})
			switch {
			case err == nil:
				warmed.Add(1)
				return nil
			case errors.Is(err, catalog.ErrNotFound):
				return nil
			default:
				return fmt.Errorf("warm venue %d: %w", id, err)
			}
		})
	}

	err := g.Wait()
	return int(warmed.Load()), err
}

// Readiness is the result of a readiness probe.
type Readiness struct {
	Ready        bool
	ModelLoaded  bool
	ModelVersion int
	CatalogState string
}

// Ready reports whether requests can be served: either a model is loaded
// or the catalog answers so the fallback can run. The model check and
// the catalog probe run concurrently.
func (s *Service) Ready(ctx context.Context) Readiness {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var (
		r            Readiness
		g            errgroup.Group
		catalogState = "ok"
	)
	g.Go(func() error {
		r.ModelVersion = s.ModelVersion()
		r.ModelLoaded = r.ModelVersion > 0
		return nil
	})
	g.Go(func() error {
		if _, err := s.catalog.Count(probeCtx); err != nil {
			catalogState = "unavailable"
			return err
		}
		return nil
	})
	catalogErr := g.Wait()

	if rs, ok := s.catalog.(interface{ State() string }); ok && catalogErr == nil {
		catalogState = rs.State()
	}
	r.CatalogState = catalogState
	r.Ready = r.ModelLoaded || catalogErr == nil
	return r
}

// msDuration converts milliseconds to a Duration.
func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
