package raster

import (
	"errors"
	"fmt"
)

// MaxSampleLevel is the largest MaxLevel a Raster can carry. It matches the
// 16-bit sample limit of the PGM format.
const MaxSampleLevel = 65535

// Sentinel errors for raster operations.
var (
	// ErrInvalidDimensions indicates a raster with no rows or no columns.
	ErrInvalidDimensions = errors.New("raster: rows and cols must be positive")
	// ErrNonRectangular indicates input rows of differing lengths.
	ErrNonRectangular = errors.New("raster: all rows must have the same length")
	// ErrOutOfBounds indicates an access outside [0, rows) × [0, cols).
	ErrOutOfBounds = errors.New("raster: coordinates outside raster bounds")
	// ErrSampleRange indicates a sample or max level outside the representable range.
	ErrSampleRange = errors.New("raster: sample outside representable range")
	// ErrUnsupportedFormat indicates an input file this package cannot decode.
	ErrUnsupportedFormat = errors.New("raster: unsupported format")
)

// Raster is a rectangular grid of integer samples in [0, MaxLevel].
//
// Samples are stored in a flat row-major buffer owned by the Raster. The zero
// value is not usable; construct rasters with New or FromRows.
type Raster struct {
	rows     int
	cols     int
	maxLevel int
	pix      []int
}

// New allocates a rows × cols raster with every sample set to 0.
//
// Returns ErrInvalidDimensions if rows or cols is not positive, and
// ErrSampleRange if maxLevel is outside [1, MaxSampleLevel].
func New(rows, cols, maxLevel int) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if maxLevel < 1 || maxLevel > MaxSampleLevel {
		return nil, fmt.Errorf("%w: max level %d not in [1, %d]", ErrSampleRange, maxLevel, MaxSampleLevel)
	}
	return &Raster{
		rows:     rows,
		cols:     cols,
		maxLevel: maxLevel,
		pix:      make([]int, rows*cols),
	}, nil
}

// FromRows builds a raster from a rectangular 2-D slice, values[row][col].
// The input is copied.
func FromRows(values [][]int, maxLevel int) (*Raster, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, err := New(len(values), len(values[0]), maxLevel)
	if err != nil {
		return nil, err
	}
	for i, row := range values {
		if len(row) != r.cols {
			return nil, ErrNonRectangular
		}
		for j, v := range row {
			if err := r.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Rows returns the number of rows.
func (r *Raster) Rows() int { return r.rows }

// Cols returns the number of columns.
func (r *Raster) Cols() int { return r.cols }

// MaxLevel returns the largest sample value the raster may hold.
func (r *Raster) MaxLevel() int { return r.maxLevel }

// InBounds reports whether (row, col) addresses a sample of the raster.
func (r *Raster) InBounds(row, col int) bool {
	return row >= 0 && row < r.rows && col >= 0 && col < r.cols
}

// Get returns the sample at (row, col).
func (r *Raster) Get(row, col int) (int, error) {
	if !r.InBounds(row, col) {
		return 0, r.boundsError(row, col)
	}
	return r.pix[r.index(row, col)], nil
}

// Set stores v at (row, col). v must lie in [0, MaxLevel].
func (r *Raster) Set(row, col, v int) error {
	if !r.InBounds(row, col) {
		return r.boundsError(row, col)
	}
	if v < 0 || v > r.maxLevel {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSampleRange, v, r.maxLevel)
	}
	r.pix[r.index(row, col)] = v
	return nil
}

// Fill sets every sample to v.
func (r *Raster) Fill(v int) error {
	if v < 0 || v > r.maxLevel {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSampleRange, v, r.maxLevel)
	}
	for i := range r.pix {
		r.pix[i] = v
	}
	return nil
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]int, len(r.pix))
	copy(pix, r.pix)
	return &Raster{rows: r.rows, cols: r.cols, maxLevel: r.maxLevel, pix: pix}
}

// SameShape reports whether o has the same rows and cols as r.
func (r *Raster) SameShape(o *Raster) bool {
	return o != nil && r.rows == o.rows && r.cols == o.cols
}

// CountNonZero returns the number of samples that are not 0.
func (r *Raster) CountNonZero() int {
	n := 0
	for _, v := range r.pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// index maps (row, col) to the row-major buffer offset. Callers check bounds.
func (r *Raster) index(row, col int) int {
	return row*r.cols + col
}

func (r *Raster) boundsError(row, col int) error {
	return fmt.Errorf("%w: (%d,%d) in %dx%d raster", ErrOutOfBounds, row, col, r.rows, r.cols)
}
