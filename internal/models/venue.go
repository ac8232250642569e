// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package models

import "github.com/tomtom215/venuerec/internal/geo"

// Venue is a bookable venue as stored in the catalog.
//
// Prices are optional; a nil price means the venue has not published one.
// The recommendation pipeline treats missing prices as zero, but the
// catalog and the API keep the distinction so clients can render "n/a".
type Venue struct {
	ID          int64    `json:"id" yaml:"id" validate:"gt=0"`
	Name        string   `json:"name" yaml:"name" validate:"max=200"`
	Slug        string   `json:"slug" yaml:"slug" validate:"max=200"`
	CityID      int64    `json:"city_id" yaml:"city_id" validate:"gt=0"`
	Lat         float64  `json:"lat" yaml:"lat" validate:"finite,latitude"`
	Lng         float64  `json:"lng" yaml:"lng" validate:"finite,longitude"`
	VegPrice    *float64 `json:"veg_price,omitempty" yaml:"veg_price,omitempty" validate:"omitempty,finite,gte=0"`
	NonVegPrice *float64 `json:"non_veg_price,omitempty" yaml:"non_veg_price,omitempty" validate:"omitempty,finite,gte=0"`
}

// Prices returns the veg and non-veg prices with missing values as zero.
//
//nolint:gocritic // value receiver keeps Venue usable as a map value
func (v Venue) Prices() (veg, nonVeg float64) {
	if v.VegPrice != nil {
		veg = *v.VegPrice
	}
	if v.NonVegPrice != nil {
		nonVeg = *v.NonVegPrice
	}
	return veg, nonVeg
}

// Location returns the venue coordinates.
//
//nolint:gocritic // value receiver keeps Venue usable as a map value
func (v Venue) Location() geo.Point {
	return geo.Point{Lat: v.Lat, Lng: v.Lng}
}

// Price returns a pointer to p, for building venues in code and tests.
func Price(p float64) *float64 {
	return &p
}
