package blob

import (
	"errors"
	"fmt"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// DefaultMaxLabel is the label limit used when no WithMaxLabel option is
// given. Labels share the 8-bit sample domain of the rasters they are
// written to.
const DefaultMaxLabel = 255

// ErrCapacityExceeded indicates that labeling needed more provisional labels
// than the label raster can represent. No partial result is returned.
var ErrCapacityExceeded = errors.New("blob: label capacity exceeded")

type labelConfig struct {
	maxLabel int
}

// LabelOption configures Label.
type LabelOption func(*labelConfig)

// WithMaxLabel sets the largest label value Label may allocate. It becomes
// the MaxLevel of the returned label raster and must lie in
// [1, raster.MaxSampleLevel].
func WithMaxLabel(n int) LabelOption {
	return func(c *labelConfig) {
		c.maxLabel = n
	}
}

// Label assigns a positive label to every 4-connected component of
// foreground (non-zero) pixels in bin and returns the label raster.
// Background pixels stay 0.
//
// # Algorithm
//
// Two passes over the raster in row-major order:
//
//  1. Each foreground pixel looks at its left (row, col-1) and top
//     (row-1, col) neighbors in the label raster; neighbors outside the
//     raster count as background.
//     - neither labeled: allocate the next provisional label
//     - one labeled, or both labeled with the same value: copy it
//     - both labeled and different: take the smaller label and union the
//     two classes in the equivalence forest
//  2. Every provisional label is replaced by the root of its class.
//
// The forest is weighted by class size, so the surviving root of a merge is
// not necessarily the smaller label.
//
// After the second pass two foreground pixels share a label iff they are
// joined by a path of edge-adjacent foreground pixels. Diagonal contact does
// not connect. Each component carries one of the provisional labels seen in
// it; callers should rely only on labels being unique per component.
//
// # Capacity
//
// Provisional labels are drawn from [1, maxLabel] (DefaultMaxLabel unless
// WithMaxLabel is given). Allocating past the limit returns an error wrapping
// ErrCapacityExceeded. The limit counts provisional labels, which can exceed
// the final number of components for shapes that open upward (U shapes).
//
// Time: O(rows·cols·α). Memory: O(rows·cols) for the label raster plus
// O(maxLabel) for the equivalence forest.
func Label(bin *raster.Raster, opts ...LabelOption) (*raster.Raster, error) {
	cfg := labelConfig{maxLabel: DefaultMaxLabel}
	for _, opt := range opts {
		opt(&cfg)
	}

	rows, cols := bin.Rows(), bin.Cols()
	out, err := raster.New(rows, cols, cfg.maxLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate label raster: %w", err)
	}

	// Provisional labels run 1..maxLabel; slot 0 is the background.
	eq := newEquivalence(cfg.maxLabel + 1)
	nextLabel := 1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if sample(bin, i, j) == 0 {
				continue
			}

			left := sample(out, i, j-1)
			top := sample(out, i-1, j)

			var label int
			switch {
			case left == 0 && top == 0:
				if nextLabel > cfg.maxLabel {
					Logger().Warn("labeling aborted", "limit", cfg.maxLabel, "row", i, "col", j)
					return nil, fmt.Errorf("%w: provisional label %d at (%d,%d) exceeds label limit %d",
						ErrCapacityExceeded, nextLabel, i, j, cfg.maxLabel)
				}
				label = nextLabel
				nextLabel++
			case top == 0:
				label = left
			case left == 0:
				label = top
			case left == top:
				label = left
			default:
				label = min(left, top)
				eq.Union(left, top)
			}

			if err := out.Set(i, j, label); err != nil {
				return nil, err
			}
		}
	}

	provisional := nextLabel - 1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if l := sample(out, i, j); l != 0 {
				if err := out.Set(i, j, eq.Root(l)); err != nil {
					return nil, err
				}
			}
		}
	}

	Logger().Debug("labeled raster",
		"rows", rows, "cols", cols,
		"provisional", provisional, "unions", eq.unions,
		"components", provisional-eq.unions)
	return out, nil
}

// sample returns the value at (row, col), or 0 outside the raster.
func sample(r *raster.Raster, row, col int) int {
	v, err := r.Get(row, col)
	if err != nil {
		return 0
	}
	return v
}
