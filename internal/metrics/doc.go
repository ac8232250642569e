// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All metrics are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation Metrics:
  - venuerec_recommendation_requests_total: Requests by outcome (counter)
    Labels: outcome (ok, degraded, cached, not_found, error)
  - venuerec_recommendation_duration_seconds: Request latency (histogram)
  - venuerec_recommendation_list_size: Entries per ranked list (histogram)
    Labels: intent (similar, same_location, price_match)
  - venuerec_invalid_reference_total: Out-of-range reference locations (counter)
  - venuerec_fallback_total: Same-city fallback responses (counter)

Training Metrics:
  - venuerec_training_runs_total: Runs by status (counter)
  - venuerec_training_duration_seconds: Run duration (histogram)
  - venuerec_training_venue_count: Venues in last snapshot (gauge)
  - venuerec_model_version: Active artifact version (gauge)
  - venuerec_model_reloads_total: Reload attempts by status (counter)

Catalog Metrics:
  - venuerec_catalog_query_duration_seconds: Backend call latency (histogram)
    Labels: backend, operation
  - venuerec_catalog_query_errors_total: Failed backend calls (counter)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels: name, result (counter)
  - circuit_breaker_transitions_total: Labels: name, from, to (counter)

Cache Metrics:
  - venuerec_cache_hits_total, venuerec_cache_misses_total,
    venuerec_cache_errors_total: Labels: backend (counter)

API Metrics:
  - api_requests_total: Labels: method, endpoint, status_code (counter)
  - api_request_duration_seconds: Labels: method, endpoint (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Labels: endpoint (counter)

# Usage

	start := time.Now()
	resp, err := svc.Recommend(ctx, req)
	metrics.RecordRecommendation(metrics.OutcomeOK, time.Since(start))

Use the Record* helpers instead of touching the vectors directly so label
values stay consistent.
*/
package metrics
