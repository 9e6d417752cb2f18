// Package raster provides the integer sample grid that the blob analysis
// pipeline reads and writes.
//
// A Raster is a rectangular grid of rows × cols integer samples in the range
// [0, MaxLevel], stored as an owned flat buffer in row-major order. Every
// accessor checks its coordinates; out-of-range reads and writes return
// ErrOutOfBounds instead of touching memory outside the grid.
//
// # Coordinate System
//
// Rasters are addressed as (row, col):
//   - row: vertical position (0 = topmost row)
//   - col: horizontal position (0 = leftmost column)
//
// When converting to and from image.Image, row maps to Y and col maps to X.
// Region values use the image convention (X1,Y1 inclusive, X2,Y2 exclusive)
// so they line up with the coordinates shown by image viewers.
//
// # Formats
//
// Rasters are read from and written to:
//   - PGM (P5 binary, P2 ASCII on read), preserving MaxLevel up to 65535
//   - PNG, JPEG, GIF, BMP and TIFF through github.com/disintegration/imaging,
//     converted to 8-bit luminance on load
//   - WebP on read only, through golang.org/x/image/webp
//
// Only PGM keeps MaxLevel, so Save refuses other formats for rasters deeper
// than 8 bits.
//
// # Binarization
//
// Threshold maps samples strictly above the level to Foreground (255) and the
// rest to 0. Histogram and LevelRange describe the sample distribution to
// help pick a level.
//
// # Thread Safety
//
// A Raster is not safe for concurrent mutation. The Cache type is safe for
// concurrent use; rasters returned from it are shared and must be cloned
// before being modified.
package raster
