// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package catalog provides venue storage backends.
//
// Three backends implement Catalog:
//
//   - DuckDBCatalog: a venues table in a DuckDB file (default)
//   - BadgerCatalog: JSON records in an embedded BadgerDB with a city index
//   - MemoryCatalog: a map, for tests and local development
//
// Resilient wraps any backend with a per-call timeout and a sony/gobreaker
// circuit breaker. When the breaker is open calls fail fast with
// ErrUnavailable, which the API reports as 503.
//
// Venues can be loaded from YAML with ImportFile; every record is
// validated before anything is written.
package catalog
