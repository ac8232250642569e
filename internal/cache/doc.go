// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package cache provides the recommendation result cache.

Two backends implement Store:

  - MemoryStore wraps Cache, a TTL map with an optional entry bound, for
    single-process deployments.
  - RedisStore uses go-redis so replicas share results.

Payloads are opaque bytes; the service encodes responses with goccy/go-json
before storing them.

# Keys

RecommendationKey embeds the active model version, so results computed by
an older model are never served after a reload:

	key := cache.RecommendationKey(set.Version, venueID, params)
	// venuerec:rec:v7:42:3f9a...

# Failure Handling

Store errors are backend failures, not misses. Callers log them, count
them, and fall through to computing the result.
*/
package cache
