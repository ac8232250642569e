// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package storage

import (
	"encoding/gob"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func zerologNop() zerolog.Logger {
	return zerolog.Nop()
}

// writeStored overwrites an artifact file with sf.
func writeStored(t *testing.T, path string, sf *storedArtifacts) {
	t.Helper()
	f, err := os.Create(path) //nolint:gosec // test temp path
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := gob.NewEncoder(f).Encode(*sf); err != nil {
		t.Fatal(err)
	}
}
