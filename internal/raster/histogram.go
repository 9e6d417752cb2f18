package raster

import (
	"github.com/anthonynsimon/bild/histogram"
)

// Histogram returns the number of samples at each level, indexed 0 through
// MaxLevel.
//
// Rasters of at most 8 bits are counted with bild's histogram package; a gray
// image expands to equal RGB channels, so the red bins hold the exact counts.
func Histogram(r *Raster) []int {
	if r.maxLevel > 255 {
		bins := make([]int, r.maxLevel+1)
		for _, v := range r.pix {
			bins[v]++
		}
		return bins
	}

	h := histogram.NewRGBAHistogram(r.Image())
	bins := make([]int, r.maxLevel+1)
	copy(bins, h.R.Bins)
	return bins
}

// LevelRange returns the smallest and largest level with a non-zero count in
// hist. An all-zero histogram reports (0, 0).
func LevelRange(hist []int) (lo, hi int) {
	lo, hi = -1, 0
	for v, n := range hist {
		if n == 0 {
			continue
		}
		if lo < 0 {
			lo = v
		}
		hi = v
	}
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}
