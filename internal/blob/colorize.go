package blob

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// goldenAngle spreads consecutive label hues around the color wheel.
const goldenAngle = 137.50776405003785

// LabelColor returns the display color for label l. Label 0 (background) is
// black; every other label gets a fixed HSV hue, so the same label always has
// the same color.
func LabelColor(l int) color.RGBA {
	if l == 0 {
		return color.RGBA{A: 255}
	}
	hue := math.Mod(float64(l)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Colorize renders a label raster as an RGBA image with one color per label.
func Colorize(labels *raster.Raster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, labels.Cols(), labels.Rows()))
	for y := 0; y < labels.Rows(); y++ {
		for x := 0; x < labels.Cols(); x++ {
			img.SetRGBA(x, y, LabelColor(sample(labels, y, x)))
		}
	}
	return img
}

// Annotate writes each descriptor's label number next to its centroid in
// white, using the basicfont 7x13 face. Text running off the image is clipped.
func Annotate(img draw.Image, descriptors []Descriptor) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	b := img.Bounds()
	for _, desc := range descriptors {
		x := b.Min.X + int(desc.CentroidCol) + 2
		y := b.Min.Y + int(desc.CentroidRow) + face.Ascent/2
		d.Dot = fixed.P(x, y)
		d.DrawString(strconv.Itoa(desc.Label))
	}
}
