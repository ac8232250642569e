// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package api provides the HTTP surface of the recommendation service.

Routing uses chi v5. Every route runs behind request ID propagation,
real IP extraction, panic recovery, CORS and response compression. The
versioned API group adds per-IP rate limiting (httprate), security headers
and Prometheus request metrics labelled with the chi route pattern.

# Endpoints

	GET /api/v1/venues/{id}/recommendations  ranked similar, same_location, price_match lists
	GET /api/v1/model                        active artifact metadata
	GET /health/live                         process liveness
	GET /health/ready                        model loaded or catalog reachable
	GET /metrics                             Prometheus exposition

Query parameters of the recommendations endpoint:

	n                number of results per list, 1..50 (default 5)
	max_distance_km  same_location ceiling in km, (0, 500] (default 15)
	lat, lng         optional reference location; used only when both parse

# Responses

All endpoints except /metrics return a models.APIResponse envelope encoded
with goccy/go-json. Successful responses carry an ETag; a matching
If-None-Match returns 304 with no body. Errors map to stable codes:

	400 VALIDATION_ERROR, INVALID_VENUE_ID
	404 NOT_FOUND
	429 RATE_LIMIT_EXCEEDED
	503 CATALOG_UNAVAILABLE, MODEL_UNAVAILABLE
	504 TIMEOUT
	500 INTERNAL_ERROR
*/
package api
