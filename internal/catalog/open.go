// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"fmt"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	DuckDBPath string
	BadgerPath string

	// Resilient wraps the backend with NewResilient when set.
	Resilient *ResilientSettings
}

// Open creates the configured backend.
//
//nolint:gocritic // options passed by value for immutability
func Open(opts Options) (Catalog, error) {
	var (
		c   Catalog
		err error
	)
	switch opts.Backend {
	case BackendDuckDB, "":
		c, err = NewDuckDBCatalog(opts.DuckDBPath)
	case BackendBadger:
		c, err = NewBadgerCatalog(opts.BadgerPath)
	case BackendMemory:
		c = NewMemoryCatalog()
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", opts.Backend, err)
	}

	if opts.Resilient != nil {
		return NewResilient(c, *opts.Resilient), nil
	}
	return c, nil
}
