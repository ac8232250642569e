// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package storage persists trained artifact sets.
//
// Each training run produces one versioned file holding the feature bundle,
// the catalog snapshot and the spatial index together, so the three parts
// can never be mixed across generations.
//
// # Storage Format
//
// Artifacts are gob-encoded, checksummed and gzip-compressed:
//
//	filename: artifacts_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ArtifactMetadata)
//	  - CompressedData (gzip-compressed gob-encoded payload)
//
// A CURRENT file next to the artifacts holds the active version number.
// Both the artifact file and the pointer are written with renameio, so a
// reader sees either the old or the new content and never a partial file.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/models")
//	if err != nil {
//	    return err
//	}
//
//	version, err := store.Save(ctx, set)   // writes v(N+1), moves CURRENT
//
//	set, meta, err := store.Load(ctx, 0)   // 0 = version named by CURRENT
//
// # Data Integrity
//
// Load decompresses the payload, recomputes its SHA-256 and compares it with
// the stored checksum, then validates the decoded set. Any failure along the
// way (missing file, bad gzip stream, checksum mismatch, inconsistent
// parts) wraps recommend.ErrModelUnavailable.
//
// # Directory Structure
//
//	/data/models/
//	  artifacts_v1.gob.gz
//	  artifacts_v2.gob.gz
//	  artifacts_v3.gob.gz
//	  CURRENT              <- "3"
//
// # Thread Safety
//
// Store methods are safe for concurrent use. Loaded artifact sets are never
// mutated and can be shared freely.
package storage
