// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"fmt"
	"sort"

	"github.com/viterin/vek"
)

// Neighbor is a catalog row returned by an index query.
type Neighbor struct {
	Row      int
	Distance float64
}

// SpatialIndex is an exact Euclidean nearest-neighbor index over composed
// feature vectors. Row i of the index is row i of the catalog snapshot.
//
// The index is immutable after BuildIndex and safe for concurrent queries.
// Queries scan every row, which keeps results exact and ties ordered by
// row index; catalogs of venues are small enough for this to stay cheap.
type SpatialIndex struct {
	Dim     int
	Vectors [][]float64
}

// BuildIndex creates an index over vectors. All vectors must share the
// same non-zero width.
func BuildIndex(vectors [][]float64) (*SpatialIndex, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("build index: %w", ErrEmptyCatalog)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("build index: zero-width vectors")
	}

	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("build index: row %d has width %d, want %d", i, len(v), dim)
		}
		rows[i] = append([]float64(nil), v...)
	}

	return &SpatialIndex{Dim: dim, Vectors: rows}, nil
}

// Len returns the number of indexed rows.
func (ix *SpatialIndex) Len() int {
	return len(ix.Vectors)
}

// Query returns the k rows closest to v, nearest first. Equal distances
// keep row order. k larger than Len is capped.
func (ix *SpatialIndex) Query(v []float64, k int) ([]Neighbor, error) {
	if len(v) != ix.Dim {
		return nil, fmt.Errorf("query vector has width %d, index expects %d", len(v), ix.Dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.Vectors) {
		k = len(ix.Vectors)
	}

	all := make([]Neighbor, len(ix.Vectors))
	for i, row := range ix.Vectors {
		all[i] = Neighbor{Row: i, Distance: vek.Distance(v, row)}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})

	return all[:k], nil
}
