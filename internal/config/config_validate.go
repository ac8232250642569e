// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate checks every section and returns the first error.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return errors.New("read_timeout and write_timeout must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", s.RequestTimeout)
	}
	return nil
}

// Validate checks the catalog section.
func (c *CatalogConfig) Validate() error {
	switch c.Backend {
	case "duckdb":
		if c.DuckDBPath == "" {
			return errors.New("duckdb_path is required for the duckdb backend")
		}
	case "badger":
		if c.BadgerPath == "" {
			return errors.New("badger_path is required for the badger backend")
		}
	case "memory":
	default:
		return fmt.Errorf("backend must be one of duckdb, badger, memory; got %q", c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.BreakerThreshold == 0 {
		return errors.New("breaker_threshold must be positive")
	}
	if c.BreakerOpenTimeout <= 0 {
		return fmt.Errorf("breaker_open_timeout must be positive, got %s", c.BreakerOpenTimeout)
	}
	if c.ImportBatchSize < 1 {
		return fmt.Errorf("import_batch_size must be positive, got %d", c.ImportBatchSize)
	}
	return nil
}

// Validate checks the recommend section. Engine-level limits are checked
// again when the engine is built.
func (r *RecommendConfig) Validate() error {
	if r.ModelPath == "" {
		return errors.New("model_path is required")
	}
	if !(r.LocationWeight > 0) || math.IsInf(r.LocationWeight, 0) {
		return fmt.Errorf("location_weight must be positive, got %f", r.LocationWeight)
	}
	if r.DefaultN < 1 || r.DefaultN > 50 {
		return fmt.Errorf("default_n must be in [1, 50], got %d", r.DefaultN)
	}
	if !(r.DefaultMaxDistanceKm > 0) || r.DefaultMaxDistanceKm > 500 {
		return fmt.Errorf("default_max_distance_km must be in (0, 500], got %f", r.DefaultMaxDistanceKm)
	}
	if r.TrainInterval < 0 {
		return fmt.Errorf("train_interval must not be negative, got %s", r.TrainInterval)
	}
	if r.ReloadInterval < 0 {
		return fmt.Errorf("reload_interval must not be negative, got %s", r.ReloadInterval)
	}
	if r.KeepVersions < 1 {
		return fmt.Errorf("keep_versions must be at least 1, got %d", r.KeepVersions)
	}
	if r.PriceTolerance < 0 || r.PriceTolerance > 1 {
		return fmt.Errorf("price_tolerance must be in [0, 1], got %f", r.PriceTolerance)
	}
	return nil
}

// Validate checks the cache section.
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case "memory", "none":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("backend must be one of memory, redis, none; got %q", c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, got %s", c.TTL)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative, got %d", c.MaxEntries)
	}
	return nil
}

// Validate checks the security section.
func (s *SecurityConfig) Validate() error {
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitReqs < 1 {
		return fmt.Errorf("rate_limit_reqs must be positive, got %d", s.RateLimitReqs)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive, got %s", s.RateLimitWindow)
	}
	return nil
}

// Validate checks the logging section.
func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("level must be one of trace, debug, info, warn, error; got %q", l.Level)
	}
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", l.Format)
	}
	return nil
}
