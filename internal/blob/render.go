package blob

import (
	"math"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// DefaultMarkerLength is the distance in pixels from a region's center to its
// orientation endpoint.
const DefaultMarkerLength = 10

type renderConfig struct {
	length  float64
	segment bool
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

// WithMarkerLength sets the center-to-endpoint distance in pixels.
func WithMarkerLength(l float64) RenderOption {
	return func(c *renderConfig) {
		c.length = l
	}
}

// WithSegment draws the full line from center to endpoint instead of the two
// marker pixels alone. The line is clipped to the canvas.
func WithSegment() RenderOption {
	return func(c *renderConfig) {
		c.segment = true
	}
}

// Render marks each region on canvas, in place, with the canvas MaxLevel:
//
//   - the center pixel (int(CentroidRow), int(CentroidCol)), truncated
//     toward zero
//   - the endpoint (int(cr + L·cos θ), int(cc + L·sin θ)) where θ is
//     OrientationDegrees in radians and L the marker length
//
// The endpoint is drawn only when it falls inside the canvas. A center
// outside the canvas is an error, since descriptors from ExtractAttributes on
// a raster of the same shape always lie inside it.
func Render(descriptors []Descriptor, canvas *raster.Raster, opts ...RenderOption) error {
	cfg := renderConfig{length: DefaultMarkerLength}
	for _, opt := range opts {
		opt(&cfg)
	}

	ink := canvas.MaxLevel()
	for _, d := range descriptors {
		r0, c0 := int(d.CentroidRow), int(d.CentroidCol)
		if err := canvas.Set(r0, c0, ink); err != nil {
			return err
		}

		theta := d.OrientationDegrees * math.Pi / 180
		r1 := int(d.CentroidRow + cfg.length*math.Cos(theta))
		c1 := int(d.CentroidCol + cfg.length*math.Sin(theta))

		if cfg.segment {
			drawLine(canvas, r0, c0, r1, c1, ink)
			continue
		}
		if canvas.InBounds(r1, c1) {
			_ = canvas.Set(r1, c1, ink)
		}
	}
	return nil
}

// drawLine rasterizes the segment (r0,c0)-(r1,c1) with Bresenham's algorithm,
// skipping points outside the canvas.
func drawLine(canvas *raster.Raster, r0, c0, r1, c1, ink int) {
	dr := abs(r1 - r0)
	dc := -abs(c1 - c0)
	sr, sc := 1, 1
	if r0 > r1 {
		sr = -1
	}
	if c0 > c1 {
		sc = -1
	}
	e := dr + dc

	for {
		if canvas.InBounds(r0, c0) {
			_ = canvas.Set(r0, c0, ink)
		}
		if r0 == r1 && c0 == c1 {
			return
		}
		e2 := 2 * e
		if e2 >= dc {
			e += dc
			r0 += sr
		}
		if e2 <= dr {
			e += dr
			c0 += sc
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
