// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/metrics"
	"github.com/tomtom215/venuerec/internal/models"
)

// ErrUnavailable is returned when the circuit breaker rejects a call.
var ErrUnavailable = errors.New("catalog unavailable")

// ResilientSettings configures the circuit breaker and call timeout.
type ResilientSettings struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// Timeout bounds every backend call.
	Timeout time.Duration

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before half-open.
	OpenTimeout time.Duration

	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold uint32
}

// DefaultResilientSettings returns production defaults.
func DefaultResilientSettings() ResilientSettings {
	return ResilientSettings{
		Name:             "catalog",
		Timeout:          2 * time.Second,
		MaxRequests:      3,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// Resilient wraps a Catalog with a per-call timeout and a circuit breaker.
// ErrNotFound and caller cancellation do not count as failures.
type Resilient struct {
	inner    Catalog
	cb       *gobreaker.CircuitBreaker[any]
	settings ResilientSettings
}

// NewResilient wraps inner.
//
//nolint:gocritic // settings passed by value for immutability
func NewResilient(inner Catalog, settings ResilientSettings) *Resilient {
	if settings.Name == "" {
		settings.Name = "catalog"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultResilientSettings().Timeout
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = DefaultResilientSettings().FailureThreshold
	}

	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(settings.Name).Set(0)

	threshold := settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Resilient{inner: inner, cb: cb, settings: settings}
}

// call runs fn under the breaker with a timeout and records metrics.
func call[T any](ctx context.Context, r *Resilient, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	result, err := r.cb.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
		return fn(callCtx)
	})
	metrics.RecordCatalogQuery(r.inner.Name(), operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.settings.Name, "rejected").Inc()
			return zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, operation, err)
		}
		if !errors.Is(err, ErrNotFound) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.settings.Name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.settings.Name).
				Set(float64(r.cb.Counts().ConsecutiveFailures))
		}
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(r.settings.Name, "success").Inc()
	typed, ok := result.(T)
	if !ok && result != nil {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// State returns the breaker state name: closed, half-open or open.
func (r *Resilient) State() string {
	return stateToString(r.cb.State())
}

// Name implements Catalog.
func (r *Resilient) Name() string { return r.inner.Name() }

// Close implements Catalog.
func (r *Resilient) Close() error { return r.inner.Close() }

// FetchByIDs implements Catalog.
func (r *Resilient) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	return call(ctx, r, "fetch_by_ids", func(ctx context.Context) ([]models.Venue, error) {
		return r.inner.FetchByIDs(ctx, ids)
	})
}

// meanPair carries MeanPrices through the generic call path.
type meanPair struct{ veg, nonVeg float64 }

// MeanPrices implements Catalog.
func (r *Resilient) MeanPrices(ctx context.Context) (veg, nonVeg float64, err error) {
	p, err := call(ctx, r, "mean_prices", func(ctx context.Context) (meanPair, error) {
		v, nv, err := r.inner.MeanPrices(ctx)
		return meanPair{v, nv}, err
	})
	return p.veg, p.nonVeg, err
}

// ListAll implements Catalog.
func (r *Resilient) ListAll(ctx context.Context) ([]models.Venue, error) {
	return call(ctx, r, "list_all", r.inner.ListAll)
}

// ListByCity implements Catalog.
func (r *Resilient) ListByCity(ctx context.Context, cityID, excludeID int64, limit int) ([]models.Venue, error) {
	return call(ctx, r, "list_by_city", func(ctx context.Context) ([]models.Venue, error) {
		return r.inner.ListByCity(ctx, cityID, excludeID, limit)
	})
}

// Get implements Catalog.
func (r *Resilient) Get(ctx context.Context, id int64) (*models.Venue, error) {
	return call(ctx, r, "get", func(ctx context.Context) (*models.Venue, error) {
		return r.inner.Get(ctx, id)
	})
}

// Upsert implements Catalog.
func (r *Resilient) Upsert(ctx context.Context, venues []models.Venue) error {
	_, err := call(ctx, r, "upsert", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.Upsert(ctx, venues)
	})
	return err
}

// Count implements Catalog.
func (r *Resilient) Count(ctx context.Context) (int, error) {
	return call(ctx, r, "count", r.inner.Count)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
