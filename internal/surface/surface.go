// Package surface samples closed-form height functions into elevation grids.
// It stands in for a DEM loader when exercising the terrain engine.
package surface

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/terrain.report/internal/terrain"
)

// Func returns the height at map coordinate (x, y), y pointing north.
type Func func(x, y float64) float64

// Peaks is the classic two-hill, one-pit test surface. Its range is roughly
// [-6.5, 8.1] over [-3, 3]².
func Peaks(x, y float64) float64 {
	return 3*(1-x)*(1-x)*math.Exp(-x*x-(y+1)*(y+1)) -
		10*(x/5-x*x*x-math.Pow(y, 5))*math.Exp(-x*x-y*y) -
		1.0/3*math.Exp(-(x+1)*(x+1)-y*y)
}

// Plane returns a tilted plane rising by ax per unit x and ay per unit y.
func Plane(ax, ay float64) Func {
	return func(x, y float64) float64 { return ax*x + ay*y }
}

// Cone returns a cone of the given peak height and base radius centred on
// the origin. Heights outside the base are zero.
func Cone(height, radius float64) Func {
	return func(x, y float64) float64 {
		d := math.Hypot(x, y)
		if d >= radius {
			return 0
		}
		return height * (1 - d/radius)
	}
}

var named = map[string]Func{
	"peaks": Peaks,
	"ramp":  Plane(1, 0),
	"cone":  Cone(3, 3),
}

// Named resolves a surface by name.
func Named(name string) (Func, error) {
	fn, ok := named[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown surface %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists the surfaces accepted by Named, sorted.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Offset selects how sampled heights are shifted after sampling.
type Offset int

const (
	// OffsetNone keeps the function values.
	OffsetNone Offset = iota
	// OffsetRaiseByMax adds the maximum height to every sample, which lifts
	// the peaks surface clear of zero.
	OffsetRaiseByMax
	// OffsetMinToZero shifts the grid so its lowest sample is zero.
	OffsetMinToZero
)

// Extent is the sampled rectangle in function coordinates.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// DefaultExtent covers the interesting part of Peaks.
var DefaultExtent = Extent{XMin: -3, XMax: 3, YMin: -3, YMax: 3}

// MaxSamples bounds rows*cols for a single sampled grid.
const MaxSamples = 1 << 26

// Sampler turns a Func into an ElevationGrid.
type Sampler struct {
	Func       Func
	Extent     Extent
	Resolution float64 // function units between the nominal samples
	CellSize   float64 // grid cell size handed to the engine
	Offset     Offset
}

// Shape returns the grid size the sampler produces: (max-min)/resolution
// samples per axis, truncated.
func (s Sampler) Shape() (rows, cols int) {
	cols = int((s.Extent.XMax - s.Extent.XMin) / s.Resolution)
	rows = int((s.Extent.YMax - s.Extent.YMin) / s.Resolution)
	return rows, cols
}

// Validate reports configuration that cannot produce a grid.
func (s Sampler) Validate() error {
	if s.Func == nil {
		return fmt.Errorf("sampler has no surface function")
	}
	if !(s.Resolution > 0) {
		return fmt.Errorf("resolution must be positive, got %v", s.Resolution)
	}
	if !(s.CellSize > 0) {
		return fmt.Errorf("cell size must be positive, got %v", s.CellSize)
	}
	if !(s.Extent.XMax > s.Extent.XMin) || !(s.Extent.YMax > s.Extent.YMin) {
		return fmt.Errorf("extent is empty: %+v", s.Extent)
	}
	nx := (s.Extent.XMax - s.Extent.XMin) / s.Resolution
	ny := (s.Extent.YMax - s.Extent.YMin) / s.Resolution
	if !(nx*ny <= MaxSamples) {
		return fmt.Errorf("extent %+v at resolution %v needs %.3g samples (max %d)", s.Extent, s.Resolution, nx*ny, MaxSamples)
	}
	rows, cols := s.Shape()
	if rows < 1 || cols < 1 {
		return fmt.Errorf("extent %+v at resolution %v yields no samples", s.Extent, s.Resolution)
	}
	return nil
}

// Sample evaluates Func on an evenly spaced lattice spanning the extent
// with both endpoints included. Row 0 holds the largest y so the grid is
// north-up.
func (s Sampler) Sample() (*terrain.ElevationGrid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rows, cols := s.Shape()
	xs := linspace(s.Extent.XMin, s.Extent.XMax, cols)
	ys := linspace(s.Extent.YMin, s.Extent.YMax, rows)

	heights := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		y := ys[rows-1-i]
		row := heights.RawRowView(i)
		for j, x := range xs {
			row[j] = s.Func(x, y)
		}
	}

	data := heights.RawMatrix().Data
	switch s.Offset {
	case OffsetRaiseByMax:
		floats.AddConst(floats.Max(data), data)
	case OffsetMinToZero:
		floats.AddConst(-floats.Min(data), data)
	}

	return terrain.NewElevationGridFromMatrix(heights, s.CellSize, s.CellSize)
}

func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
