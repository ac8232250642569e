// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - recommendation requests and pass result sizes
// - training runs and the active model version
// - catalog backend queries and the catalog circuit breaker
// - result cache efficiency
// - API endpoint latency and throughput

var (
	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "degraded", "cached", "not_found", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venuerec_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"outcome"},
	)

	RecommendationListSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venuerec_recommendation_list_size",
			Help:    "Number of venues returned per ranked list",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"intent"}, // "similar", "same_location", "price_match"
	)

	RecommendationInvalidReferences = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuerec_invalid_reference_total",
			Help: "Reference locations rejected as out of range and replaced by venue coordinates",
		},
	)

	RecommendationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuerec_fallback_total",
			Help: "Requests answered from the same-city fallback because the model was unavailable",
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_training_runs_total",
			Help: "Total number of training runs by status",
		},
		[]string{"status"}, // "success", "empty_catalog", "error"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "venuerec_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	TrainingVenueCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venuerec_training_venue_count",
			Help: "Number of venues in the most recent successful training run",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venuerec_model_version",
			Help: "Version of the artifact set currently serving queries (0 = none)",
		},
	)

	ModelReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_model_reloads_total",
			Help: "Artifact reload attempts by status",
		},
		[]string{"status"}, // "loaded", "unchanged", "error"
	)

	// Catalog Metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venuerec_catalog_query_duration_seconds",
			Help:    "Duration of catalog backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_catalog_query_errors_total",
			Help: "Total number of failed catalog backend calls",
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current consecutive failure count",
		},
		[]string{"name"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_cache_hits_total",
			Help: "Result cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_cache_misses_total",
			Help: "Result cache misses",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuerec_cache_errors_total",
			Help: "Result cache backend errors (treated as misses)",
		},
		[]string{"backend"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// Outcome labels for recommendation requests.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeCached   = "cached"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// RecordRecommendation records a finished recommendation request
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(outcome).Inc()
	RecommendationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordListSizes records the size of each ranked list in a response
func RecordListSizes(similar, sameLocation, priceMatch int) {
	RecommendationListSize.WithLabelValues("similar").Observe(float64(similar))
	RecommendationListSize.WithLabelValues("same_location").Observe(float64(sameLocation))
	RecommendationListSize.WithLabelValues("price_match").Observe(float64(priceMatch))
}

// RecordInvalidReference records a rejected reference location
func RecordInvalidReference() {
	RecommendationInvalidReferences.Inc()
}

// RecordFallback records a request served by the same-city fallback
func RecordFallback() {
	RecommendationFallbacks.Inc()
}

// RecordTraining records a training run. emptyCatalog distinguishes the
// expected no-data case from real failures.
func RecordTraining(duration time.Duration, venueCount int, err error, emptyCatalog bool) {
	TrainingDuration.Observe(duration.Seconds())
	switch {
	case err == nil:
		TrainingRuns.WithLabelValues("success").Inc()
		TrainingVenueCount.Set(float64(venueCount))
	case emptyCatalog:
		TrainingRuns.WithLabelValues("empty_catalog").Inc()
	default:
		TrainingRuns.WithLabelValues("error").Inc()
	}
}

// RecordModelReload records an artifact reload attempt
func RecordModelReload(status string) {
	ModelReloads.WithLabelValues(status).Inc()
}

// SetModelVersion updates the active model version gauge
func SetModelVersion(version int) {
	ModelVersion.Set(float64(version))
}

// RecordCatalogQuery records a catalog backend call
func RecordCatalogQuery(backend, operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordCacheAccess records a result cache lookup
func RecordCacheAccess(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
	} else {
		CacheMisses.WithLabelValues(backend).Inc()
	}
}

// RecordCacheError records a result cache backend failure
func RecordCacheError(backend string) {
	CacheErrors.WithLabelValues(backend).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// IsTimeout reports whether err is a deadline error, for outcome labels.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
