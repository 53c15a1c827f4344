package render

import (
	"image/color"
	"math"
)

// gridXYZ adapts a layer to plotter.GridXYZ. Plot rows run south to north
// so Y increases upward while grid row 0 stays the northern edge.
type gridXYZ struct {
	l          layer
	rows, cols int
	dx, dy     float64
}

func newGridXYZ(l layer, dx, dy float64) gridXYZ {
	rows, cols := l.grid.Dims()
	return gridXYZ{l: l, rows: rows, cols: cols, dx: dx, dy: dy}
}

func (g gridXYZ) Dims() (c, r int)   { return g.cols, g.rows }
func (g gridXYZ) Z(c, r int) float64 { return g.l.masked(g.rows-1-r, c) }
func (g gridXYZ) X(c int) float64    { return float64(c) * g.dx }
func (g gridXYZ) Y(r int) float64    { return float64(r) * g.dy }

// greys is a black-to-white palette, the usual choice for hillshade.
type greys int

func (n greys) Colors() []color.Color {
	out := make([]color.Color, int(n))
	for i := range out {
		v := uint8(math.Round(255 * float64(i) / float64(int(n)-1)))
		out[i] = color.Gray{Y: v}
	}
	return out
}

// solid is a single-colour palette for contour lines.
type solid struct{ c color.Color }

func (s solid) Colors() []color.Color { return []color.Color{s.c} }

// contourLevels returns multiples of interval strictly inside (lo, hi),
// capped at maxLevels. Intervals too fine to step through at the
// magnitude of lo and hi yield no levels.
func contourLevels(lo, hi, interval float64, maxLevels int) []float64 {
	if !(interval > 0) || !(hi > lo) || maxLevels <= 0 {
		return nil
	}
	first := math.Floor(lo/interval) + 1
	last := math.Ceil(hi / interval)
	if math.Abs(first) > maxExactStep || math.Abs(last) > maxExactStep {
		return nil
	}
	var out []float64
	for k := first; k < last+1 && len(out) < maxLevels; k++ {
		v := k * interval
		if v >= hi {
			break
		}
		if v > lo {
			out = append(out, v)
		}
	}
	return out
}

// maxExactStep is the largest level index that k++ still advances.
const maxExactStep = 1 << 52
