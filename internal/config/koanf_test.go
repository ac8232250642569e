// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns valid defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Backend != "duckdb" {
		t.Errorf("Catalog.Backend = %q, want duckdb", cfg.Catalog.Backend)
	}
	if cfg.Recommend.SameLocationMultiplier != 3.0 || cfg.Recommend.PriceMatchMultiplier != 0.5 {
		t.Errorf("multipliers = %f/%f, want 3/0.5",
			cfg.Recommend.SameLocationMultiplier, cfg.Recommend.PriceMatchMultiplier)
	}
	if cfg.Recommend.DefaultN != 5 || cfg.Recommend.DefaultMaxDistanceKm != 15 {
		t.Errorf("request defaults = %d/%f, want 5/15", cfg.Recommend.DefaultN, cfg.Recommend.DefaultMaxDistanceKm)
	}
	if cfg.Recommend.TrainInterval != 24*time.Hour {
		t.Errorf("Recommend.TrainInterval = %v, want 24h", cfg.Recommend.TrainInterval)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache = %+v, want memory with 5m TTL", cfg.Cache)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"http_port", "server.port"},
		{"CATALOG_BACKEND", "catalog.backend"},
		{"DUCKDB_PATH", "catalog.duckdb_path"},
		{"RECOMMEND_TRAIN_ON_STARTUP", "recommend.train_on_startup"},
		{"RECOMMEND_KEEP_VERSIONS", "recommend.keep_versions"},
		{"REDIS_ADDR", "cache.redis_addr"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},

		// Unmapped
		{"PATH", ""},
		{"HOME", ""},
		{"SERVER_PORT", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// Every mapping must target a key that exists in the defaults.
func TestEnvMappingsTargetKnownKeys(t *testing.T) {
	t.Parallel()

	known := make(map[string]bool)
	collectKoanfKeys(reflect.TypeOf(Config{}), "", known)

	for env, key := range envMappings {
		if !known[key] {
			t.Errorf("%s maps to unknown key %q", strings.ToUpper(env), key)
		}
	}
}

func collectKoanfKeys(typ reflect.Type, prefix string, out map[string]bool) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Tag.Get("koanf")
		if name == "" {
			continue
		}
		key := prefix + name
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0)) {
			collectKoanfKeys(field.Type, key+".", out)
			continue
		}
		out[key] = true
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	// A missing CONFIG_PATH falls through to the default search.
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got == filepath.Join(dir, "missing.yaml") {
		t.Errorf("findConfigFile() returned a missing file")
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_BACKEND", "badger")
	t.Setenv("CATALOG_BREAKER_THRESHOLD", "7")
	t.Setenv("RECOMMEND_TRAIN_INTERVAL", "6h")
	t.Setenv("RECOMMEND_TRAIN_ON_STARTUP", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Catalog.Backend != "badger" || cfg.Catalog.BreakerThreshold != 7 {
		t.Errorf("Catalog = %+v, want badger with threshold 7", cfg.Catalog)
	}
	if cfg.Recommend.TrainInterval != 6*time.Hour || !cfg.Recommend.TrainOnStartup {
		t.Errorf("Recommend schedule = %v/%v, want 6h/true", cfg.Recommend.TrainInterval, cfg.Recommend.TrainOnStartup)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.KeepVersions != 5 {
		t.Errorf("Recommend.KeepVersions = %d, want 5 (default)", cfg.Recommend.KeepVersions)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

catalog:
  backend: memory

recommend:
  model_path: /tmp/models
  location_weight: 3.5
  keep_versions: 2

cache:
  backend: redis
  redis_addr: "redis:6379"
  ttl: 90s

logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v, want 127.0.0.1:8888", cfg.Server)
	}
	if cfg.Server.Addr() != "127.0.0.1:8888" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Catalog.Backend != "memory" {
		t.Errorf("Catalog.Backend = %q, want memory", cfg.Catalog.Backend)
	}
	if cfg.Recommend.LocationWeight != 3.5 || cfg.Recommend.KeepVersions != 2 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis:6379" || cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 8888\nlogging:\n  level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env overrides file)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "port"},
		{"unknown catalog backend", map[string]string{"CATALOG_BACKEND": "postgres"}, "catalog"},
		{"redis without address", map[string]string{"CACHE_BACKEND": "redis"}, "redis_addr"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "level"},
		{"n out of range", map[string]string{"RECOMMEND_DEFAULT_N": "80"}, "default_n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithKoanfMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() accepted malformed YAML")
	}
}
