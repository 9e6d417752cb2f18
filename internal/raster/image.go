package raster

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Region represents a rectangular region of a raster in image coordinates.
//
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//
// X addresses columns and Y addresses rows.
type Region struct {
	X1 int `json:"x1"` // Left column (inclusive)
	Y1 int `json:"y1"` // Top row (inclusive)
	X2 int `json:"x2"` // Right column (exclusive)
	Y2 int `json:"y2"` // Bottom row (exclusive)
}

// FromImage converts img to an 8-bit luminance raster (MaxLevel 255).
//
// Color images are reduced with imaging.Grayscale, which applies ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B). Gray images pass through unchanged.
// The raster origin is img.Bounds().Min.
func FromImage(img image.Image) (*Raster, error) {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()

	r, err := New(bounds.Dy(), bounds.Dx(), 255)
	if err != nil {
		return nil, err
	}
	for y := 0; y < r.rows; y++ {
		off := y * gray.Stride
		for x := 0; x < r.cols; x++ {
			r.pix[r.index(y, x)] = int(gray.Pix[off+x*4])
		}
	}
	return r, nil
}

// Image returns the raster as a standard library image with unscaled samples:
// *image.Gray when MaxLevel ≤ 255, *image.Gray16 otherwise.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.cols, r.rows)
	if r.maxLevel <= 255 {
		img := image.NewGray(rect)
		for y := 0; y < r.rows; y++ {
			for x := 0; x < r.cols; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(r.pix[r.index(y, x)])})
			}
		}
		return img
	}

	img := image.NewGray16(rect)
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(r.pix[r.index(y, x)])})
		}
	}
	return img
}

// Load reads a raster from disk.
//
// Files with a .pgm or .pnm extension are decoded by ReadPGM and keep their
// full sample range. Everything else goes through imaging.Open (PNG, JPEG,
// GIF, BMP, TIFF and WebP, with EXIF orientation applied) and is converted
// to 8-bit luminance by FromImage.
func Load(path string) (*Raster, error) {
	if isPGM(path) {
		return LoadPGM(path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// Save writes r to path. The format is chosen from the extension: .pgm and
// .pnm use WritePGM; other extensions supported by imaging.Save (png, jpg,
// gif, bmp, tif) are encoded from r.Image().
//
// Only PGM records MaxLevel, and Load reads every other format back as 8-bit
// luminance, so rasters with MaxLevel above 255 (label rasters with a raised
// limit, deep scans) are rejected for non-PGM paths with ErrUnsupportedFormat.
func Save(path string, r *Raster) error {
	if isPGM(path) {
		return SavePGM(path, r)
	}
	if r.maxLevel > 255 {
		return fmt.Errorf("%w: raster with max level %d needs a .pgm path to keep its samples",
			ErrUnsupportedFormat, r.maxLevel)
	}
	if err := imaging.Save(r.Image(), path); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// SaveImage encodes an arbitrary image (a colorized label map, for example)
// with imaging.Save. The format follows the extension; PGM is not supported
// here because it holds a single channel.
func SaveImage(path string, img image.Image) error {
	if isPGM(path) {
		return fmt.Errorf("%w: PGM cannot hold a color image, use .png", ErrUnsupportedFormat)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// Crop extracts a rectangular region into a new raster with the same MaxLevel.
func Crop(r *Raster, region Region) (*Raster, error) {
	if region.X1 < 0 || region.Y1 < 0 || region.X2 > r.cols || region.Y2 > r.rows {
		return nil, fmt.Errorf("%w: crop region (%d,%d)-(%d,%d) outside raster bounds (0,0)-(%d,%d)",
			ErrOutOfBounds, region.X1, region.Y1, region.X2, region.Y2, r.cols, r.rows)
	}
	if region.X1 >= region.X2 || region.Y1 >= region.Y2 {
		return nil, fmt.Errorf("%w: invalid crop region: x1 must be < x2, y1 must be < y2", ErrInvalidDimensions)
	}

	out, err := New(region.Y2-region.Y1, region.X2-region.X1, r.maxLevel)
	if err != nil {
		return nil, err
	}
	for row := 0; row < out.rows; row++ {
		src := r.index(region.Y1+row, region.X1)
		copy(out.pix[out.index(row, 0):out.index(row, 0)+out.cols], r.pix[src:src+out.cols])
	}
	return out, nil
}

func isPGM(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm", ".pnm":
		return true
	}
	return false
}
