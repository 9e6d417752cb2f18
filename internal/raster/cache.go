package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Cache provides thread-safe caching of decoded rasters to avoid redundant
// disk reads.
//
// The cache stores rasters keyed by their file path. Once a file is loaded,
// subsequent Load() calls for the same path return the cached raster without
// disk I/O.
//
// # Sharing
//
// Cached rasters are shared between callers. Operations that mutate a raster
// (rendering markers, for example) must work on a Clone().
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear().
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewCache creates and initializes a new empty raster cache.
func NewCache() *Cache {
	return &Cache{
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or decodes it from disk with the
// package-level Load if not cached.
//
// The raster is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *Cache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Clear removes all rasters from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path. If the path is
// not cached, this method does nothing.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// Info contains metadata about a loaded raster file.
type Info struct {
	// Width is the number of columns.
	Width int `json:"width"`

	// Height is the number of rows.
	Height int `json:"height"`

	// MaxLevel is the largest representable sample value (255 for decoded
	// PNG/JPEG/GIF/BMP/TIFF files, the header maxval for PGM).
	MaxLevel int `json:"max_level"`

	// Format is derived from the file extension: "pgm", "png", "jpeg", "gif",
	// "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// ForegroundPixels is the number of non-zero samples.
	ForegroundPixels int `json:"foreground_pixels"`

	// MinSample and MaxSample are the smallest and largest sample present.
	// A threshold between them splits the raster; one outside yields an
	// all-background or all-foreground binary image.
	MinSample int `json:"min_sample"`
	MaxSample int `json:"max_sample"`

	// Histogram holds the sample count per level 0..MaxLevel. Omitted for
	// rasters deeper than 8 bits.
	Histogram []int `json:"histogram,omitempty"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads a raster through the cache and returns metadata about it.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	r, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hist := Histogram(r)
	lo, hi := LevelRange(hist)
	info := &Info{
		Width:            r.Cols(),
		Height:           r.Rows(),
		MaxLevel:         r.MaxLevel(),
		Format:           formatFromExt(path),
		ForegroundPixels: r.CountNonZero(),
		MinSample:        lo,
		MaxSample:        hi,
		FileSizeBytes:    stat.Size(),
	}
	if r.MaxLevel() <= 255 {
		info.Histogram = hist
	}
	return info, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm", ".pnm":
		return "pgm"
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
