// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". Data carries the payload on success and
// Error carries the failure details otherwise.
//
//	{
//	  "status": "success",
//	  "data": {"venue": {...}, "similar": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error with a human-readable message.
//
// Codes used by the service:
//   - VALIDATION_ERROR: invalid query parameters
//   - NOT_FOUND: unknown venue
//   - MODEL_UNAVAILABLE: no trained artifacts are loaded
//   - CATALOG_UNAVAILABLE: the catalog backend is failing or its breaker is open
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendedVenue is one entry of a recommendation list.
type RecommendedVenue struct {
	Venue
	Rank       int     `json:"rank"`
	DistanceKm float64 `json:"distance_km"`
}

// RecommendationsResponse is the payload of the venue recommendations endpoint.
type RecommendationsResponse struct {
	Venue        Venue              `json:"venue"`
	Similar      []RecommendedVenue `json:"similar"`
	SameLocation []RecommendedVenue `json:"same_location"`
	PriceMatch   []RecommendedVenue `json:"price_match"`

	// Reference is the location distances were measured from.
	Reference ReferenceLocation `json:"reference"`

	// Degraded is true when the model was unavailable and the lists
	// come from the same-city fallback.
	Degraded bool `json:"degraded"`

	// ModelVersion is the artifact version that produced the lists
	// (0 when degraded).
	ModelVersion int `json:"model_version"`
}

// ReferenceLocation describes the point used as the distance origin.
type ReferenceLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// Source is "request" when the caller's override was used and
	// "venue" when the venue's own coordinates were used.
	Source string `json:"source"`
}

// ModelInfo describes the active artifact set.
type ModelInfo struct {
	Version        int       `json:"version"`
	TrainedAt      time.Time `json:"trained_at"`
	VenueCount     int       `json:"venue_count"`
	CityCount      int       `json:"city_count"`
	LocationWeight float64   `json:"location_weight"`
	Checksum       string    `json:"checksum,omitempty"`

	// PriceDrift is omitted when the catalog cannot be read.
	PriceDrift *PriceDrift `json:"price_drift,omitempty"`
}

// PriceDrift compares the catalog's current mean prices with the means
// of the snapshot the active model was trained on. The change fields are
// relative, (catalog - model) / model, and zero when the model mean is 0.
type PriceDrift struct {
	ModelMeanVeg      float64 `json:"model_mean_veg"`
	ModelMeanNonVeg   float64 `json:"model_mean_non_veg"`
	CatalogMeanVeg    float64 `json:"catalog_mean_veg"`
	CatalogMeanNonVeg float64 `json:"catalog_mean_non_veg"`
	VegChange         float64 `json:"veg_change"`
	NonVegChange      float64 `json:"non_veg_change"`
}

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion int    `json:"model_version,omitempty"`
	CatalogState string `json:"catalog_state,omitempty"`
}
