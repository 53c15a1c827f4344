package terrain

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// NoData marks cells for which nothing was computed. Only the one-cell
	// border of each output grid carries it.
	NoData = -9999.0

	// FlatAspect marks interior cells whose gradient is exactly zero, where
	// the downslope direction is undefined.
	FlatAspect = -1.0

	// MinGridSize is the smallest extent, in both dimensions, that has at
	// least one interior cell.
	MinGridSize = 3
)

// ElevationGrid is an immutable rectangular grid of heights with a uniform
// horizontal cell size expressed in the same unit as the heights.
type ElevationGrid struct {
	heights   *mat.Dense
	cellSizeX float64
	cellSizeY float64
}

// NewElevationGrid copies heights (row-major, row 0 = north) into a new grid.
// Only structural problems are rejected here; size and cell-size
// preconditions are checked by Validate so that a 2×2 grid can still be
// built and handed to the engine.
func NewElevationGrid(rows, cols int, heights []float64, dx, dy float64) (*ElevationGrid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, invalidf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(heights) != rows*cols {
		return nil, invalidf("expected %d heights for a %dx%d grid, got %d", rows*cols, rows, cols, len(heights))
	}
	data := make([]float64, len(heights))
	copy(data, heights)
	return &ElevationGrid{
		heights:   mat.NewDense(rows, cols, data),
		cellSizeX: dx,
		cellSizeY: dy,
	}, nil
}

// NewElevationGridFromMatrix copies m into a new grid.
func NewElevationGridFromMatrix(m mat.Matrix, dx, dy float64) (*ElevationGrid, error) {
	if m == nil {
		return nil, invalidf("nil height matrix")
	}
	if d, ok := m.(*mat.Dense); ok && d == nil {
		return nil, invalidf("nil height matrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, invalidf("grid dimensions must be positive, got %dx%d", r, c)
	}
	return &ElevationGrid{
		heights:   mat.DenseCopyOf(m),
		cellSizeX: dx,
		cellSizeY: dy,
	}, nil
}

// Dims returns the number of rows and columns.
func (g *ElevationGrid) Dims() (rows, cols int) { return g.heights.Dims() }

// Rows returns the number of rows.
func (g *ElevationGrid) Rows() int { r, _ := g.heights.Dims(); return r }

// Cols returns the number of columns.
func (g *ElevationGrid) Cols() int { _, c := g.heights.Dims(); return c }

// CellSize returns the horizontal cell size along columns (dx) and rows (dy).
func (g *ElevationGrid) CellSize() (dx, dy float64) { return g.cellSizeX, g.cellSizeY }

// At returns the height at row i, column j.
func (g *ElevationGrid) At(i, j int) float64 { return g.heights.At(i, j) }

// Matrix returns a copy of the heights.
func (g *ElevationGrid) Matrix() *mat.Dense { return mat.DenseCopyOf(g.heights) }

// Range returns the minimum and maximum height, ignoring NaN.
func (g *ElevationGrid) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	r, _ := g.heights.Dims()
	for i := 0; i < r; i++ {
		for _, v := range g.heights.RawRowView(i) {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// Window returns the 3×3 neighbourhood centred on interior cell (i, j).
// The caller must ensure 1 <= i < rows-1 and 1 <= j < cols-1.
func (g *ElevationGrid) Window(i, j int) Window {
	north := g.heights.RawRowView(i - 1)
	mid := g.heights.RawRowView(i)
	south := g.heights.RawRowView(i + 1)
	return windowAt(north, mid, south, j)
}

func windowAt(north, mid, south []float64, j int) Window {
	return Window{
		NW: north[j-1], N: north[j], NE: north[j+1],
		W: mid[j-1], Z: mid[j], E: mid[j+1],
		SW: south[j-1], S: south[j], SE: south[j+1],
	}
}

// LightingConfig places the sun for hillshading.
type LightingConfig struct {
	AltitudeDeg float64 `json:"altitude_deg"` // height above the horizon, [0, 90]
	AzimuthDeg  float64 `json:"azimuth_deg"`  // compass direction, clockwise from north, [0, 360)
}

// DefaultLighting is the conventional cartographic light source: 45° above
// the north-west horizon.
func DefaultLighting() LightingConfig {
	return LightingConfig{AltitudeDeg: 45, AzimuthDeg: 315}
}

// Validate checks both angles against their domains.
func (l LightingConfig) Validate() error {
	if !(l.AltitudeDeg >= 0 && l.AltitudeDeg <= 90) {
		return invalidf("altitude must be in [0, 90] degrees, got %v", l.AltitudeDeg)
	}
	if !(l.AzimuthDeg >= 0 && l.AzimuthDeg < 360) {
		return invalidf("azimuth must be in [0, 360) degrees, got %v", l.AzimuthDeg)
	}
	return nil
}

// DerivativeGrids holds the engine output. All three grids have the shape of
// the input ElevationGrid.
type DerivativeGrids struct {
	Slope     *mat.Dense // degrees from horizontal, [0, 90)
	Aspect    *mat.Dense // compass bearing of steepest descent, [0, 360), or FlatAspect
	Hillshade *mat.Dense // illumination, [0, 255]
}

// Dims returns the shared shape of the three grids.
func (d *DerivativeGrids) Dims() (rows, cols int) { return d.Slope.Dims() }

func newDerivativeGrids(rows, cols int) *DerivativeGrids {
	return &DerivativeGrids{
		Slope:     noDataDense(rows, cols),
		Aspect:    noDataDense(rows, cols),
		Hillshade: noDataDense(rows, cols),
	}
}

func noDataDense(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = NoData
	}
	return mat.NewDense(rows, cols, data)
}

// IsNoData reports whether v is the border sentinel.
func IsNoData(v float64) bool { return v == NoData }
