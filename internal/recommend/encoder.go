// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek"
)

// OneHotEncoder maps a city identifier to a one-hot block.
//
// Categories are stored sorted ascending, which fixes the column order.
// Identifiers not seen during fitting encode to an all-zero block.
type OneHotEncoder struct {
	Categories []int64
}

// FitOneHotEncoder learns the distinct categories in values.
func FitOneHotEncoder(values []int64) *OneHotEncoder {
	seen := make(map[int64]struct{}, len(values))
	categories := make([]int64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		categories = append(categories, v)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	return &OneHotEncoder{Categories: categories}
}

// Dim returns the width of the one-hot block.
func (e *OneHotEncoder) Dim() int {
	return len(e.Categories)
}

// Column returns the column of value, or -1 if it was not seen at fit time.
func (e *OneHotEncoder) Column(value int64) int {
	i := sort.Search(len(e.Categories), func(i int) bool { return e.Categories[i] >= value })
	if i < len(e.Categories) && e.Categories[i] == value {
		return i
	}
	return -1
}

// EncodeInto writes the one-hot block for value into dst, which must
// have length Dim.
func (e *OneHotEncoder) EncodeInto(dst []float64, value int64) {
	for i := range dst {
		dst[i] = 0
	}
	if col := e.Column(value); col >= 0 {
		dst[col] = 1
	}
}

// StandardScaler centers each column on its mean and divides by its
// population standard deviation. Columns with zero variance keep a scale
// of 1 so constant features transform to zero instead of dividing by zero.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitStandardScaler learns per-column mean and scale from rows.
// All rows must have the same width.
func FitStandardScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit scaler: %w", ErrEmptyCatalog)
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), width)
		}
	}

	n := float64(len(rows))
	mean := make([]float64, width)
	scale := make([]float64, width)
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean[j] = vek.Mean(col)
		vek.SubNumber_Inplace(col, mean[j])
		scale[j] = math.Sqrt(vek.Dot(col, col) / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Dim returns the number of columns the scaler was fit on.
func (s *StandardScaler) Dim() int {
	return len(s.Mean)
}

// TransformInto scales x into dst and multiplies every value by weight.
// Both slices must have length Dim.
func (s *StandardScaler) TransformInto(dst, x []float64, weight float64) {
	dst = vek.Sub_Into(dst, x, s.Mean)
	vek.Div_Inplace(dst, s.Scale)
	vek.MulNumber_Inplace(dst, weight)
}

// Transform returns the scaled copy of x.
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(s.Mean))
	s.TransformInto(out, x, 1)
	return out
}

// FeatureBundle holds every fitted transform needed to build a composed
// feature vector, plus the model configuration it was trained with.
// It is never refit after training.
type FeatureBundle struct {
	City   *OneHotEncoder
	Price  *StandardScaler
	Coord  *StandardScaler
	Config ModelConfig
}

// Dim returns the width of a composed feature vector.
func (b *FeatureBundle) Dim() int {
	return b.City.Dim() + b.Price.Dim() + b.Coord.Dim()
}

// FeatureInput is the raw material for one composed vector.
type FeatureInput struct {
	CityID      int64
	VegPrice    float64
	NonVegPrice float64
	Lat         float64
	Lng         float64
}

// Compose builds [onehot(city) | scaled(prices) | scaled(coords) * coordWeight].
// Training uses coordWeight = Config.LocationWeight; query passes use
// Config.LocationWeight times their own multiplier.
func (b *FeatureBundle) Compose(in FeatureInput, coordWeight float64) []float64 {
	vec := make([]float64, b.Dim())

	cityEnd := b.City.Dim()
	priceEnd := cityEnd + b.Price.Dim()

	b.City.EncodeInto(vec[:cityEnd], in.CityID)
	b.Price.TransformInto(vec[cityEnd:priceEnd], []float64{in.VegPrice, in.NonVegPrice}, 1)
	b.Coord.TransformInto(vec[priceEnd:], []float64{in.Lat, in.Lng}, coordWeight)

	return vec
}

// Validate checks that all components are present and shaped as expected.
func (b *FeatureBundle) Validate() error {
	if b.City == nil || b.Price == nil || b.Coord == nil {
		return fmt.Errorf("feature bundle is incomplete")
	}
	if b.City.Dim() == 0 {
		return fmt.Errorf("city encoder has no categories")
	}
	if b.Price.Dim() != 2 || len(b.Price.Scale) != 2 {
		return fmt.Errorf("price scaler has %d columns, want 2", b.Price.Dim())
	}
	if b.Coord.Dim() != 2 || len(b.Coord.Scale) != 2 {
		return fmt.Errorf("coordinate scaler has %d columns, want 2", b.Coord.Dim())
	}
	return b.Config.Validate()
}
