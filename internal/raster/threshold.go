package raster

import "fmt"

// Foreground is the sample value Threshold writes for foreground pixels.
const Foreground = 255

// Threshold binarizes r with a global threshold: samples strictly above
// level become Foreground (255), everything else becomes 0. A sample equal
// to level is background. The result has MaxLevel 255.
//
// Samples are compared as stored, at every depth, so the rule is exact for
// 8-bit and deep rasters alike.
func Threshold(r *Raster, level int) (*Raster, error) {
	if level < 0 || level > r.maxLevel {
		return nil, fmt.Errorf("%w: threshold %d not in [0, %d]", ErrSampleRange, level, r.maxLevel)
	}

	out, err := New(r.rows, r.cols, Foreground)
	if err != nil {
		return nil, err
	}

	for i, v := range r.pix {
		if v > level {
			out.pix[i] = Foreground
		}
	}
	return out, nil
}
