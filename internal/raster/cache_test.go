package raster

import (
	"image/color"
	"path/filepath"
	"sync"
	"testing"
)

func TestCache_Load(t *testing.T) {
	path := createTestImageFile(t, 10, 8, color.White)
	cache := NewCache()

	r1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	r2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if r1 != r2 {
		t.Error("second Load should return the cached raster")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestCache_LoadError(t *testing.T) {
	cache := NewCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if cache.Len() != 0 {
		t.Errorf("failed load was cached: Len %d", cache.Len())
	}
}

func TestCache_EvictAndClear(t *testing.T) {
	a := createTestImageFile(t, 4, 4, color.White)
	b := createTestImageFile(t, 4, 4, color.Black)
	cache := NewCache()

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("after Evict: Len %d, want 1", cache.Len())
	}
	cache.Evict("not-cached")
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: Len %d, want 0", cache.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	path := createTestImageFile(t, 16, 16, color.White)
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestLoadInfo(t *testing.T) {
	path := createTestImageFile(t, 12, 5, color.White)
	info, err := LoadInfo(NewCache(), path)
	if err != nil {
		t.Fatalf("LoadInfo failed: %v", err)
	}
	if info.Width != 12 || info.Height != 5 {
		t.Errorf("dimensions: got %dx%d, want 12x5", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %q, want png", info.Format)
	}
	if info.MaxLevel != 255 {
		t.Errorf("MaxLevel: got %d, want 255", info.MaxLevel)
	}
	if info.ForegroundPixels != 60 {
		t.Errorf("ForegroundPixels: got %d, want 60", info.ForegroundPixels)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d, want > 0", info.FileSizeBytes)
	}
	if info.MinSample != 255 || info.MaxSample != 255 {
		t.Errorf("sample range: got [%d, %d], want [255, 255]", info.MinSample, info.MaxSample)
	}
	if len(info.Histogram) != 256 || info.Histogram[255] != 60 {
		t.Errorf("Histogram: got %d bins, want 256 with 60 at level 255", len(info.Histogram))
	}
}

func TestLoadInfo_DeepPGM(t *testing.T) {
	r, _ := FromRows([][]int{{0, 300}, {1000, 300}}, 1023)
	path := filepath.Join(t.TempDir(), "deep.pgm")
	if err := SavePGM(path, r); err != nil {
		t.Fatalf("SavePGM failed: %v", err)
	}

	info, err := LoadInfo(NewCache(), path)
	if err != nil {
		t.Fatalf("LoadInfo failed: %v", err)
	}
	if info.MinSample != 0 || info.MaxSample != 1000 {
		t.Errorf("sample range: got [%d, %d], want [0, 1000]", info.MinSample, info.MaxSample)
	}
	if info.Histogram != nil {
		t.Errorf("Histogram: got %d bins, want none for a deep raster", len(info.Histogram))
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := map[string]string{
		"a.PGM":  "pgm",
		"a.pnm":  "pgm",
		"a.jpeg": "jpeg",
		"a.JPG":  "jpeg",
		"a.tif":  "tiff",
		"a.webp": "webp",
		"a":      "unknown",
	}
	for path, want := range tests {
		if got := formatFromExt(path); got != want {
			t.Errorf("formatFromExt(%q): got %q, want %q", path, got, want)
		}
	}
}
