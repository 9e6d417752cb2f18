package blob

import (
	"fmt"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// Settings groups the knobs of a full analysis run.
type Settings struct {
	// MaxLabel is the label limit passed to Label.
	MaxLabel int `json:"max_label"`

	// Moments selects the moment convention for ExtractAttributes.
	Moments Moments `json:"-"`

	// MarkerLength is the orientation marker length used by Render.
	MarkerLength float64 `json:"marker_length"`

	// Segment draws full orientation segments instead of endpoint pixels.
	Segment bool `json:"segment"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxLabel:     DefaultMaxLabel,
		Moments:      OriginMoments,
		MarkerLength: DefaultMarkerLength,
	}
}

// RenderOptions converts the render-related settings to Render options.
func (s Settings) RenderOptions() []RenderOption {
	opts := []RenderOption{WithMarkerLength(s.MarkerLength)}
	if s.Segment {
		opts = append(opts, WithSegment())
	}
	return opts
}

// Result is the outcome of Analyze.
type Result struct {
	// Labels is the resolved label raster.
	Labels *raster.Raster `json:"-"`

	// Descriptors holds one entry per region, ascending by label.
	Descriptors []Descriptor `json:"descriptors"`

	// Count is the number of regions found.
	Count int `json:"count"`
}

// Analyze labels bin and extracts the attributes of every region.
func Analyze(bin *raster.Raster, s Settings) (*Result, error) {
	labels, err := Label(bin, WithMaxLabel(s.MaxLabel))
	if err != nil {
		return nil, fmt.Errorf("failed to label raster: %w", err)
	}
	ds := ExtractAttributes(labels, WithMoments(s.Moments))
	return &Result{
		Labels:      labels,
		Descriptors: ds,
		Count:       len(ds),
	}, nil
}

// Components returns the pixel count of every label present in labels.
// Background is not included.
func Components(labels *raster.Raster) map[int]int {
	counts := make(map[int]int)
	for i := 0; i < labels.Rows(); i++ {
		for j := 0; j < labels.Cols(); j++ {
			if l := sample(labels, i, j); l != 0 {
				counts[l]++
			}
		}
	}
	return counts
}
