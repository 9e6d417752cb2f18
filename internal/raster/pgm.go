package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ReadPGM decodes a PGM image (binary P5 or ASCII P2) into a Raster.
//
// The PGM maxval becomes the raster's MaxLevel. Binary files with maxval
// above 255 use two big-endian bytes per sample, as the format requires.
//
// # Errors
//
//   - ErrUnsupportedFormat if the magic number is not P2 or P5
//   - ErrInvalidDimensions if width or height is not positive
//   - ErrSampleRange if maxval or any sample is out of range
//   - wrapped I/O errors for truncated input
func ReadPGM(rd io.Reader) (*Raster, error) {
	br := bufio.NewReader(rd)

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read PGM header: %w", err)
	}
	if magic != "P5" && magic != "P2" {
		return nil, fmt.Errorf("%w: PGM magic %q", ErrUnsupportedFormat, magic)
	}

	var header [3]int
	for i := range header {
		tok, err := readToken(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read PGM header: %w", err)
		}
		header[i], err = strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PGM header field %q: %w", tok, err)
		}
	}
	width, height, maxval := header[0], header[1], header[2]

	r, err := New(height, width, maxval)
	if err != nil {
		return nil, err
	}

	if magic == "P2" {
		for i := range r.pix {
			tok, err := readToken(br)
			if err != nil {
				return nil, fmt.Errorf("failed to read PGM sample %d: %w", i, err)
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("failed to parse PGM sample %q: %w", tok, err)
			}
			if v < 0 || v > maxval {
				return nil, fmt.Errorf("%w: sample %d exceeds maxval %d", ErrSampleRange, v, maxval)
			}
			r.pix[i] = v
		}
		return r, nil
	}

	bytesPerSample := 1
	if maxval > 255 {
		bytesPerSample = 2
	}
	buf := make([]byte, width*bytesPerSample)
	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("failed to read PGM row %d: %w", row, err)
		}
		for col := 0; col < width; col++ {
			var v int
			if bytesPerSample == 1 {
				v = int(buf[col])
			} else {
				v = int(buf[2*col])<<8 | int(buf[2*col+1])
			}
			if v > maxval {
				return nil, fmt.Errorf("%w: sample %d exceeds maxval %d", ErrSampleRange, v, maxval)
			}
			r.pix[r.index(row, col)] = v
		}
	}
	return r, nil
}

// WritePGM encodes r as a binary (P5) PGM using r.MaxLevel as maxval.
func WritePGM(w io.Writer, r *Raster) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P5\n%d %d\n%d\n", r.cols, r.rows, r.maxLevel); err != nil {
		return fmt.Errorf("failed to write PGM header: %w", err)
	}

	wide := r.maxLevel > 255
	for _, v := range r.pix {
		var err error
		if wide {
			_, err = bw.Write([]byte{byte(v >> 8), byte(v)})
		} else {
			err = bw.WriteByte(byte(v))
		}
		if err != nil {
			return fmt.Errorf("failed to write PGM samples: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write PGM samples: %w", err)
	}
	return nil
}

// LoadPGM reads a PGM file from disk.
func LoadPGM(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return ReadPGM(f)
}

// SavePGM writes r to path as a binary PGM, replacing any existing file.
func SavePGM(path string, r *Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := WritePGM(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readToken returns the next whitespace-delimited header token, skipping
// '#' comments. The single whitespace byte ending the token is consumed,
// which leaves a P5 reader positioned at the first sample byte after maxval.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch {
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", io.ErrUnexpectedEOF
			}
		case isSpace(c):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
