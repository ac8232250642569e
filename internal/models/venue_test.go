// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestVenuePrices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		venue      Venue
		wantVeg    float64
		wantNonVeg float64
	}{
		{"both set", Venue{VegPrice: Price(300), NonVegPrice: Price(500)}, 300, 500},
		{"veg only", Venue{VegPrice: Price(250)}, 250, 0},
		{"none", Venue{}, 0, 0},
		{"explicit zero", Venue{VegPrice: Price(0), NonVegPrice: Price(0)}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			veg, nonVeg := tt.venue.Prices()
			if veg != tt.wantVeg || nonVeg != tt.wantNonVeg {
				t.Errorf("Prices() = (%v, %v), want (%v, %v)", veg, nonVeg, tt.wantVeg, tt.wantNonVeg)
			}
		})
	}
}

func TestVenueLocation(t *testing.T) {
	t.Parallel()

	v := Venue{Lat: 27.7, Lng: 85.3}
	if p := v.Location(); p.Lat != 27.7 || p.Lng != 85.3 {
		t.Errorf("Location() = %+v", p)
	}
}

// Missing prices are omitted rather than rendered as zero.
func TestVenueJSONOmitsMissingPrices(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Venue{ID: 1, CityID: 10, VegPrice: Price(300)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"veg_price":300`) {
		t.Errorf("veg_price missing: %s", s)
	}
	if strings.Contains(s, "non_veg_price") {
		t.Errorf("non_veg_price should be omitted: %s", s)
	}
}
