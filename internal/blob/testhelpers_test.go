package blob

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// binaryFromStrings builds a binary raster from rows of '#' (foreground) and
// '.' (background).
func binaryFromStrings(t *testing.T, rows ...string) *raster.Raster {
	t.Helper()
	values := make([][]int, len(rows))
	for i, row := range rows {
		values[i] = make([]int, len(row))
		for j, ch := range row {
			if ch == '#' {
				values[i][j] = raster.Foreground
			}
		}
	}
	r, err := raster.FromRows(values, raster.Foreground)
	require.NoError(t, err)
	return r
}

// emptyRaster returns an all-background raster.
func emptyRaster(t *testing.T, rows, cols int) *raster.Raster {
	t.Helper()
	r, err := raster.New(rows, cols, raster.Foreground)
	require.NoError(t, err)
	return r
}

// fillRect sets the inclusive rectangle [r0,r1]×[c0,c1] to foreground.
func fillRect(t *testing.T, r *raster.Raster, r0, c0, r1, c1 int) {
	t.Helper()
	for i := r0; i <= r1; i++ {
		for j := c0; j <= c1; j++ {
			require.NoError(t, r.Set(i, j, raster.Foreground))
		}
	}
}

func mustGet(t *testing.T, r *raster.Raster, row, col int) int {
	t.Helper()
	v, err := r.Get(row, col)
	require.NoError(t, err)
	return v
}

// floodComponents labels bin by breadth-first search over 4-neighbors and
// returns the component id of every pixel (-1 for background).
func floodComponents(bin *raster.Raster) [][]int {
	rows, cols := bin.Rows(), bin.Cols()
	comp := make([][]int, rows)
	for i := range comp {
		comp[i] = make([]int, cols)
		for j := range comp[i] {
			comp[i][j] = -1
		}
	}

	next := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if sample(bin, i, j) == 0 || comp[i][j] >= 0 {
				continue
			}
			queue := [][2]int{{i, j}}
			comp[i][j] = next
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					r, c := p[0]+d[0], p[1]+d[1]
					if sample(bin, r, c) == 0 || comp[r][c] >= 0 {
						continue
					}
					comp[r][c] = next
					queue = append(queue, [2]int{r, c})
				}
			}
			next++
		}
	}
	return comp
}

// randomBinary returns a rows x cols binary raster in which roughly percent
// of the pixels are foreground. The same seed always yields the same raster.
func randomBinary(t *testing.T, seed int64, rows, cols int, percent int) *raster.Raster {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	r := emptyRaster(t, rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Intn(100) < percent {
				require.NoError(t, r.Set(i, j, raster.Foreground))
			}
		}
	}
	return r
}
