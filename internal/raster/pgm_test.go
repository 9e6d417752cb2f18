package raster

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestPGM_RoundTrip8Bit(t *testing.T) {
	r, _ := FromRows([][]int{
		{0, 10, 255},
		{128, 1, 64},
	}, 255)

	var buf bytes.Buffer
	if err := WritePGM(&buf, r); err != nil {
		t.Fatalf("WritePGM failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("P5\n3 2\n255\n")) {
		t.Errorf("unexpected header: %q", buf.String()[:12])
	}
	if got, want := buf.Len(), len("P5\n3 2\n255\n")+6; got != want {
		t.Errorf("encoded size: got %d, want %d", got, want)
	}

	back, err := ReadPGM(&buf)
	if err != nil {
		t.Fatalf("ReadPGM failed: %v", err)
	}
	assertSameRaster(t, r, back)
}

func TestPGM_RoundTrip16Bit(t *testing.T) {
	r, _ := FromRows([][]int{
		{0, 300, 65535},
		{256, 1, 4095},
	}, 65535)

	var buf bytes.Buffer
	if err := WritePGM(&buf, r); err != nil {
		t.Fatalf("WritePGM failed: %v", err)
	}
	back, err := ReadPGM(&buf)
	if err != nil {
		t.Fatalf("ReadPGM failed: %v", err)
	}
	assertSameRaster(t, r, back)
}

func TestReadPGM_ASCIIWithComments(t *testing.T) {
	src := "P2\n# created by hand\n3 2 # width height\n15\n0 3 7\n# row two\n15 0 1\n"
	r, err := ReadPGM(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadPGM failed: %v", err)
	}
	want, _ := FromRows([][]int{{0, 3, 7}, {15, 0, 1}}, 15)
	assertSameRaster(t, want, r)
}

func TestReadPGM_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"wrong magic", "P6\n1 1\n255\n\x00\x00\x00", ErrUnsupportedFormat},
		{"zero width", "P5\n0 1\n255\n", ErrInvalidDimensions},
		{"maxval too large", "P2\n1 1\n70000\n0\n", ErrSampleRange},
		{"sample above maxval", "P2\n2 1\n10\n3 11\n", ErrSampleRange},
		{"truncated binary", "P5\n2 2\n255\n\x01\x02\x03", io.ErrUnexpectedEOF},
		{"truncated header", "P5\n2", io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPGM(strings.NewReader(tt.src))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveLoadPGM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pgm")
	r, _ := FromRows([][]int{{1, 2, 3}, {4, 5, 6}}, 1000)

	if err := Save(path, r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameRaster(t, r, back)
}

func assertSameRaster(t *testing.T, want, got *Raster) {
	t.Helper()
	if !want.SameShape(got) {
		t.Fatalf("shape: got %dx%d, want %dx%d", got.Rows(), got.Cols(), want.Rows(), want.Cols())
	}
	if want.MaxLevel() != got.MaxLevel() {
		t.Errorf("MaxLevel: got %d, want %d", got.MaxLevel(), want.MaxLevel())
	}
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			a, _ := want.Get(i, j)
			b, _ := got.Get(i, j)
			if a != b {
				t.Errorf("sample (%d,%d): got %d, want %d", i, j, b, a)
			}
		}
	}
}
