// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds a single recommendation request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// CatalogConfig selects the venue catalog backend and its breaker.
//
// Environment Variables:
//   - CATALOG_BACKEND: duckdb, badger or memory (default: duckdb)
//   - DUCKDB_PATH: DuckDB database file (default: /data/venues.duckdb)
//   - BADGER_PATH: Badger directory (default: /data/venues.badger)
//   - CATALOG_TIMEOUT: per-call timeout (default: 2s)
//   - CATALOG_BREAKER_THRESHOLD: consecutive failures that open the breaker (default: 5)
//   - CATALOG_BREAKER_OPEN_TIMEOUT: time the breaker stays open (default: 30s)
type CatalogConfig struct {
	Backend    string        `koanf:"backend"`
	DuckDBPath string        `koanf:"duckdb_path"`
	BadgerPath string        `koanf:"badger_path"`
	Timeout    time.Duration `koanf:"timeout"`

	BreakerThreshold   uint32        `koanf:"breaker_threshold"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`

	// ImportBatchSize is the number of venues written per upsert by the
	// import command.
	ImportBatchSize int `koanf:"import_batch_size"`
}

// RecommendConfig holds model training, query and artifact settings.
//
// Environment Variables:
//   - RECOMMEND_MODEL_PATH: artifact directory (default: /data/models)
//   - RECOMMEND_LOCATION_WEIGHT: coordinate block weight at training (default: 2.0)
//   - RECOMMEND_TRAIN_INTERVAL: scheduled retraining period, 0 disables (default: 24h)
//   - RECOMMEND_TRAIN_ON_STARTUP: train once when the server starts (default: false)
//   - RECOMMEND_RELOAD_INTERVAL: poll period for newly activated artifacts (default: 1m)
//   - RECOMMEND_KEEP_VERSIONS: artifact versions kept by pruning (default: 5)
//   - RECOMMEND_PRICE_TOLERANCE: fallback price band (default: 0.2)
type RecommendConfig struct {
	ModelPath      string  `koanf:"model_path"`
	LocationWeight float64 `koanf:"location_weight"`

	SimilarMultiplier       float64 `koanf:"similar_multiplier"`
	SameLocationMultiplier  float64 `koanf:"same_location_multiplier"`
	PriceMatchMultiplier    float64 `koanf:"price_match_multiplier"`
	PriceMatchCeilingFactor float64 `koanf:"price_match_ceiling_factor"`
	MaxCandidates           int     `koanf:"max_candidates"`
	DefaultN                int     `koanf:"default_n"`
	DefaultMaxDistanceKm    float64 `koanf:"default_max_distance_km"`

	TrainInterval  time.Duration `koanf:"train_interval"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	KeepVersions   int           `koanf:"keep_versions"`

	PriceTolerance    float64 `koanf:"price_tolerance"`
	FallbackScanLimit int     `koanf:"fallback_scan_limit"`
	WarmLimit         int     `koanf:"warm_limit"`
	WarmConcurrency   int     `koanf:"warm_concurrency"`
}

// CacheConfig configures the recommendation result cache.
//
// Environment Variables:
//   - CACHE_BACKEND: memory, redis or none (default: memory)
//   - CACHE_TTL: entry lifetime (default: 5m)
//   - CACHE_MAX_ENTRIES: memory backend bound (default: 10000)
//   - REDIS_ADDR, REDIS_DB, REDIS_PASSWORD: redis backend connection
type CacheConfig struct {
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	MaxEntries    int           `koanf:"max_entries"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisDB       int           `koanf:"redis_db"`
	RedisPassword string        `koanf:"redis_password"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
