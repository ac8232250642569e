// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package recommend implements the venue recommender: feature encoding,
// the spatial index, offline training and the multi-pass query engine.
//
// # Overview
//
// Training fits a FeatureBundle over the catalog:
//
//   - a one-hot encoder over city identifiers (columns sorted ascending)
//   - a standard scaler over [veg price, non-veg price], missing prices as zero
//   - a separate standard scaler over [lat, lng]
//
// Every venue becomes a composed vector
//
//	[onehot(city) | scaled(prices) | scaled(coords) * location_weight]
//
// and the vectors form a SpatialIndex keyed by snapshot row. Bundle,
// snapshot and index make up an ArtifactSet, which is immutable and passed
// explicitly into every query.
//
// # Query Passes
//
// Engine.Recommend runs one parameterized routine per QueryIntent:
//
//	intent         prices         coords      coord weight         ceiling
//	similar        target         target      location_weight*1    D
//	same_location  catalog mean   reference   location_weight*3    D
//	price_match    target         target      location_weight*0.5  2D
//
// Each pass queries min(15, catalog size) neighbors, drops the target
// venue, keeps candidates within the ceiling of the reference location
// (haversine), stable-sorts by that distance and keeps the first N. The
// multipliers and the ceiling factor come from Config.
//
// # Errors
//
//   - ErrEmptyCatalog: Train was given no venues; nothing is written
//   - ErrModelUnavailable: artifacts missing, corrupt or inconsistent
//   - ErrInvalidCoordinate: reference out of range (handled by falling back
//     to the venue's coordinates)
//
// # Thread Safety
//
// Engine and ArtifactSet are safe for concurrent use. Trainer serializes
// its own runs.
package recommend
