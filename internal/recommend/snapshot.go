// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"sort"

	"github.com/tomtom215/venuerec/internal/models"
)

// SnapshotRow is the numeric and categorical part of a venue captured at
// training time. Missing prices are stored as zero.
type SnapshotRow struct {
	ID          int64
	CityID      int64
	Lat         float64
	Lng         float64
	VegPrice    float64
	NonVegPrice float64
}

// Snapshot is the ordered catalog capture a spatial index was built from.
// Rows are sorted by ID ascending and row position is the index key.
type Snapshot struct {
	Rows []SnapshotRow
}

// NewSnapshot captures venues sorted by ID ascending. The input slice is
// not modified.
func NewSnapshot(venues []models.Venue) *Snapshot {
	rows := make([]SnapshotRow, len(venues))
	for i := range venues {
		v := &venues[i]
		veg, nonVeg := v.Prices()
		rows[i] = SnapshotRow{
			ID:          v.ID,
			CityID:      v.CityID,
			Lat:         v.Lat,
			Lng:         v.Lng,
			VegPrice:    veg,
			NonVegPrice: nonVeg,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	return &Snapshot{Rows: rows}
}

// Len returns the number of rows.
func (s *Snapshot) Len() int {
	return len(s.Rows)
}

// MeanPrices returns the mean veg and non-veg price over all rows,
// or zeros for an empty snapshot.
func (s *Snapshot) MeanPrices() (veg, nonVeg float64) {
	if len(s.Rows) == 0 {
		return 0, 0
	}
	for i := range s.Rows {
		veg += s.Rows[i].VegPrice
		nonVeg += s.Rows[i].NonVegPrice
	}
	n := float64(len(s.Rows))
	return veg / n, nonVeg / n
}

// CityCount returns the number of distinct cities.
func (s *Snapshot) CityCount() int {
	cities := make(map[int64]struct{})
	for i := range s.Rows {
		cities[s.Rows[i].CityID] = struct{}{}
	}
	return len(cities)
}

// featureInput converts a row to encoder input.
func (r *SnapshotRow) featureInput() FeatureInput {
	return FeatureInput{
		CityID:      r.CityID,
		VegPrice:    r.VegPrice,
		NonVegPrice: r.NonVegPrice,
		Lat:         r.Lat,
		Lng:         r.Lng,
	}
}
