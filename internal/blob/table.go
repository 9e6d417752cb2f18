package blob

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTable writes one line per descriptor, in slice order:
//
//	label centroidRow centroidCol minInertia area roundness orientationDegrees
//
// Fields are separated by single spaces. Reals use the shortest
// representation that round-trips (strconv 'g' format, precision -1).
func WriteTable(w io.Writer, descriptors []Descriptor) error {
	bw := bufio.NewWriter(w)
	for _, d := range descriptors {
		if _, err := bw.WriteString(tableLine(d)); err != nil {
			return fmt.Errorf("failed to write descriptor table: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write descriptor table: %w", err)
	}
	return nil
}

// FormatTable returns the table WriteTable would write.
func FormatTable(descriptors []Descriptor) string {
	var sb strings.Builder
	for _, d := range descriptors {
		sb.WriteString(tableLine(d))
	}
	return sb.String()
}

func tableLine(d Descriptor) string {
	fields := []string{
		strconv.Itoa(d.Label),
		formatReal(d.CentroidRow),
		formatReal(d.CentroidCol),
		formatReal(d.MinInertia),
		strconv.Itoa(d.Area),
		formatReal(d.Roundness),
		formatReal(d.OrientationDegrees),
	}
	return strings.Join(fields, " ") + "\n"
}

func formatReal(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
