package blob

import (
	"fmt"
	"math"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// Moments selects the reference point for second-order moments.
type Moments int

const (
	// OriginMoments accumulates Σrow², Σcol² and Σrow·col about the raster
	// origin (0,0). Orientation and roundness then depend on where a region
	// sits in the raster, not only on its shape. This reproduces the
	// reference descriptor tables and is the default.
	OriginMoments Moments = iota

	// CentralMoments accumulates Σ(row−r̄)², Σ(col−c̄)² and Σ(row−r̄)(col−c̄)
	// about each region's centroid, which makes orientation and roundness
	// translation invariant.
	CentralMoments
)

// String returns "origin" or "central".
func (m Moments) String() string {
	switch m {
	case OriginMoments:
		return "origin"
	case CentralMoments:
		return "central"
	}
	return fmt.Sprintf("Moments(%d)", int(m))
}

// ParseMoments converts "origin" or "central" to a Moments value. The empty
// string selects OriginMoments.
func ParseMoments(s string) (Moments, error) {
	switch s {
	case "", "origin":
		return OriginMoments, nil
	case "central":
		return CentralMoments, nil
	}
	return 0, fmt.Errorf("unknown moment convention %q (want origin or central)", s)
}

// Bounds is the inclusive bounding box of a region in raster coordinates.
type Bounds struct {
	MinRow int `json:"min_row"`
	MinCol int `json:"min_col"`
	MaxRow int `json:"max_row"`
	MaxCol int `json:"max_col"`
}

// Descriptor holds the geometric attributes of one labeled region.
//
// The first seven fields are the ones written by WriteTable, in table order.
type Descriptor struct {
	// Label is the region's value in the label raster.
	Label int `json:"label"`

	// CentroidRow and CentroidCol are the mean row and column of the region.
	CentroidRow float64 `json:"centroid_row"`
	CentroidCol float64 `json:"centroid_col"`

	// MinInertia is E(θ) along the principal axis θ1.
	MinInertia float64 `json:"min_inertia"`

	// Area is the number of pixels carrying Label.
	Area int `json:"area"`

	// Roundness is MinInertia/MaxInertia, or 0 when MaxInertia is 0.
	// Lower values mean a more elongated region.
	Roundness float64 `json:"roundness"`

	// OrientationDegrees is θ1 in degrees.
	OrientationDegrees float64 `json:"orientation_degrees"`

	// MaxInertia is E(θ) along the orthogonal axis θ1 + π/2.
	MaxInertia float64 `json:"max_inertia"`

	// Bounds is the region's inclusive bounding box.
	Bounds Bounds `json:"bounds"`
}

type attributeConfig struct {
	moments Moments
}

// AttributeOption configures ExtractAttributes.
type AttributeOption func(*attributeConfig)

// WithMoments selects the moment convention. The default is OriginMoments.
func WithMoments(m Moments) AttributeOption {
	return func(c *attributeConfig) {
		c.moments = m
	}
}

// accumulator collects the per-label sums of one region.
type accumulator struct {
	area                int
	sumRow, sumCol      float64
	sumRR, sumCC, sumRC float64
	bounds              Bounds
}

func (a *accumulator) add(row, col int) {
	if a.area == 0 {
		a.bounds = Bounds{MinRow: row, MinCol: col, MaxRow: row, MaxCol: col}
	} else {
		a.bounds.MinRow = min(a.bounds.MinRow, row)
		a.bounds.MinCol = min(a.bounds.MinCol, col)
		a.bounds.MaxRow = max(a.bounds.MaxRow, row)
		a.bounds.MaxCol = max(a.bounds.MaxCol, col)
	}
	a.area++
	r, c := float64(row), float64(col)
	a.sumRow += r
	a.sumCol += c
	a.sumRR += r * r
	a.sumCC += c * c
	a.sumRC += r * c
}

// ExtractAttributes computes a Descriptor for every label in [1, MaxLevel]
// that occurs in labels, ordered by ascending label. Labels with no pixels
// produce no descriptor.
//
// # Formulas
//
// With area = pixel count and sums taken over the region's pixels:
//
//	centroidRow = Σrow / area,   centroidCol = Σcol / area
//	a = Σrow² / area,  b = Σrow·col / area,  c = Σcol² / area
//	θ1 = atan2(b, a − c) / 2,   θ2 = θ1 + π/2
//	E(θ) = a·sin²θ − b·sinθ·cosθ + c·cos²θ
//	minInertia = E(θ1),  maxInertia = E(θ2)
//	roundness = minInertia / maxInertia  (0 when maxInertia == 0)
//	orientation = θ1 · 180/π
//
// Under OriginMoments the second-order sums are taken about (0,0); under
// CentralMoments they are taken about the centroid. Sums are accumulated in
// row-major pixel order, so results are reproducible bit for bit.
func ExtractAttributes(labels *raster.Raster, opts ...AttributeOption) []Descriptor {
	cfg := attributeConfig{moments: OriginMoments}
	for _, opt := range opts {
		opt(&cfg)
	}

	acc := make([]accumulator, labels.MaxLevel()+1)
	rows, cols := labels.Rows(), labels.Cols()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if l := sample(labels, i, j); l != 0 {
				acc[l].add(i, j)
			}
		}
	}

	if cfg.moments == CentralMoments {
		centralize(labels, acc)
	}

	descriptors := make([]Descriptor, 0)
	for l := 1; l < len(acc); l++ {
		if acc[l].area == 0 {
			continue
		}
		descriptors = append(descriptors, describe(l, &acc[l]))
	}

	Logger().Debug("extracted attributes", "moments", cfg.moments.String(), "regions", len(descriptors))
	return descriptors
}

// centralize replaces each accumulator's second-order sums with sums taken
// about the region's centroid, in a second row-major pass.
func centralize(labels *raster.Raster, acc []accumulator) {
	type centroid struct{ row, col float64 }
	centers := make([]centroid, len(acc))
	for l := range acc {
		if acc[l].area > 0 {
			n := float64(acc[l].area)
			centers[l] = centroid{acc[l].sumRow / n, acc[l].sumCol / n}
		}
		acc[l].sumRR, acc[l].sumCC, acc[l].sumRC = 0, 0, 0
	}

	for i := 0; i < labels.Rows(); i++ {
		for j := 0; j < labels.Cols(); j++ {
			l := sample(labels, i, j)
			if l == 0 {
				continue
			}
			dr := float64(i) - centers[l].row
			dc := float64(j) - centers[l].col
			acc[l].sumRR += dr * dr
			acc[l].sumCC += dc * dc
			acc[l].sumRC += dr * dc
		}
	}
}

func describe(label int, acc *accumulator) Descriptor {
	n := float64(acc.area)
	a := acc.sumRR / n
	b := acc.sumRC / n
	c := acc.sumCC / n

	theta1 := math.Atan2(b, a-c) / 2
	theta2 := theta1 + math.Pi/2

	minInertia := inertia(a, b, c, theta1)
	maxInertia := inertia(a, b, c, theta2)

	var roundness float64
	if maxInertia != 0 {
		roundness = minInertia / maxInertia
	}

	return Descriptor{
		Label:              label,
		CentroidRow:        acc.sumRow / n,
		CentroidCol:        acc.sumCol / n,
		MinInertia:         minInertia,
		Area:               acc.area,
		Roundness:          roundness,
		OrientationDegrees: theta1 * 180 / math.Pi,
		MaxInertia:         maxInertia,
		Bounds:             acc.bounds,
	}
}

// inertia evaluates E(θ) = a·sin²θ − b·sinθ·cosθ + c·cos²θ.
func inertia(a, b, c, theta float64) float64 {
	s, co := math.Sin(theta), math.Cos(theta)
	return a*s*s - b*s*co + c*co*co
}
