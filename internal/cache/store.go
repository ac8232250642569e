// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// KeyPrefix namespaces every key this package builds.
const KeyPrefix = "venuerec"

// Store is a byte-oriented result cache.
//
// A miss is (nil, false, nil). Errors are reserved for backend failures;
// callers treat them as misses and carry on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int

	RedisAddr     string
	RedisDB       int
	RedisPassword string
}

// Open creates the configured backend. The "none" backend returns nil,
// which callers treat as caching disabled.
//
//nolint:gocritic // options passed by value for immutability
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(opts.TTL, opts.MaxEntries), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			DB:       opts.RedisDB,
			Password: opts.RedisPassword,
		})
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// RecommendationKey builds the key for one recommendation response. The
// model version is part of the key, so a reload naturally stops serving
// results computed by the previous model.
func RecommendationKey(modelVersion int, venueID int64, params interface{}) string {
	return fmt.Sprintf("%s:rec:v%d:%d:%s", KeyPrefix, modelVersion, venueID, hashParams(params))
}

// GenerateKey creates a cache key from a method name and parameters.
func GenerateKey(method string, params interface{}) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, method, hashParams(params))
}

// hashParams returns a compact hash of the JSON form of params.
func hashParams(params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:16])
}
