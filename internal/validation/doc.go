// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package validation wraps go-playground/validator v10 with a shared
// instance, wire-name field reporting and API error conversion.
//
// Field names in errors come from the query, json or yaml tag, so a
// failure on
//
//	type RecommendationQuery struct {
//	    N int `query:"n" validate:"min=1,max=50"`
//	}
//
// is reported as "n must be at most 50". The custom "finite" tag rejects
// NaN and infinite floats.
package validation
