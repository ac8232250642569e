// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the locations searched for a config file when
// CONFIG_PATH is not set. The first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/venuerec/config.yaml",
	"/etc/venuerec/config.yml",
}

// ConfigPathEnvVar is the environment variable that names the config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, the lowest layer.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Catalog: CatalogConfig{
			Backend:            "duckdb",
			DuckDBPath:         "/data/venues.duckdb",
			BadgerPath:         "/data/venues.badger",
			Timeout:            2 * time.Second,
			BreakerThreshold:   5,
			BreakerOpenTimeout: 30 * time.Second,
			BreakerMaxRequests: 3,
			BreakerInterval:    time.Minute,
			ImportBatchSize:    500,
		},
		Recommend: RecommendConfig{
			ModelPath:      "/data/models",
			LocationWeight: 2.0,

			SimilarMultiplier:       1.0,
			SameLocationMultiplier:  3.0,
			PriceMatchMultiplier:    0.5,
			PriceMatchCeilingFactor: 2.0,
			MaxCandidates:           15,
			DefaultN:                5,
			DefaultMaxDistanceKm:    15,

			TrainInterval:  24 * time.Hour,
			TrainOnStartup: false,
			ReloadInterval: time.Minute,
			KeepVersions:   5,

			PriceTolerance:    0.2,
			FallbackScanLimit: 200,
			WarmLimit:         0,
			WarmConcurrency:   4,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH, or the first of DefaultConfigPaths that exists)
//  3. Environment variables (see envTransformFunc for the mapping)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file path, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated string values at slice keys.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config keys.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_request_timeout":  "server.request_timeout",

	// Catalog mappings
	"catalog_backend":              "catalog.backend",
	"duckdb_path":                  "catalog.duckdb_path",
	"badger_path":                  "catalog.badger_path",
	"catalog_timeout":              "catalog.timeout",
	"catalog_breaker_threshold":    "catalog.breaker_threshold",
	"catalog_breaker_open_timeout": "catalog.breaker_open_timeout",
	"catalog_breaker_max_requests": "catalog.breaker_max_requests",
	"catalog_breaker_interval":     "catalog.breaker_interval",
	"catalog_import_batch_size":    "catalog.import_batch_size",

	// Recommend mappings
	"recommend_model_path":                 "recommend.model_path",
	"recommend_location_weight":            "recommend.location_weight",
	"recommend_similar_multiplier":         "recommend.similar_multiplier",
	"recommend_same_location_multiplier":   "recommend.same_location_multiplier",
	"recommend_price_match_multiplier":     "recommend.price_match_multiplier",
	"recommend_price_match_ceiling_factor": "recommend.price_match_ceiling_factor",
	"recommend_max_candidates":             "recommend.max_candidates",
	"recommend_default_n":                  "recommend.default_n",
	"recommend_default_max_distance_km":    "recommend.default_max_distance_km",
	"recommend_train_interval":             "recommend.train_interval",
	"recommend_train_on_startup":           "recommend.train_on_startup",
	"recommend_reload_interval":            "recommend.reload_interval",
	"recommend_keep_versions":              "recommend.keep_versions",
	"recommend_price_tolerance":            "recommend.price_tolerance",
	"recommend_fallback_scan_limit":        "recommend.fallback_scan_limit",
	"recommend_warm_limit":                 "recommend.warm_limit",
	"recommend_warm_concurrency":           "recommend.warm_concurrency",

	// Cache mappings
	"cache_backend":     "cache.backend",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",
	"redis_addr":        "cache.redis_addr",
	"redis_db":          "cache.redis_db",
	"redis_password":    "cache.redis_password",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a config key.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronizing access to anything the
// callback replaces.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// ConfigFilePath returns the config file LoadWithKoanf would read, or "".
func ConfigFilePath() string {
	return findConfigFile()
}
