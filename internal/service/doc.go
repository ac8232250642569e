// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package service orchestrates recommendation requests around the engine.

The engine in package recommend is pure: it ranks venue IDs against an
artifact set it is handed. This package supplies everything around it:

  - the active artifact set, held in an atomic.Pointer and swapped by the
    Reloader when the artifact store names a new version
  - venue lookup through the catalog, then a set-based fetch of the
    recommended venues rebuilt in the engine's rank order
  - the same-city fallback when the model is unavailable, with a price
    band for price_match; such responses carry degraded=true
  - the result cache, keyed by model version, with singleflight so
    concurrent misses for the same key compute once
  - post-reload cache warming with bounded parallelism

# Usage

	svc, err := service.New(service.DefaultConfig(), engine, cat, store, logger)
	reloader := service.NewReloader(artifactStore, svc, logger)
	if _, err := reloader.Reload(ctx); err != nil {
	    // keep serving with the fallback
	}

	resp, cached, err := svc.Recommend(ctx, service.Request{VenueID: 42, N: 5})

# Errors

Recommend wraps catalog.ErrNotFound for unknown venues and
catalog.ErrUnavailable when the catalog breaker is open.
recommend.ErrModelUnavailable never reaches callers.
*/
package service
