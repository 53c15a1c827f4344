// Package render draws elevation and derivative grids for people to look at.
//
// It is a pure consumer of terrain output: nothing here feeds back into the
// computation. PNG output uses gonum/plot; the interactive page uses
// go-echarts. Sentinel cells (NoData, FlatAspect) are left undrawn.
package render

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/terrain.report/internal/terrain"
)

// Scene is everything a renderer needs for one run.
type Scene struct {
	Title     string
	Elevation *terrain.ElevationGrid
	Grids     *terrain.DerivativeGrids
	Lighting  terrain.LightingConfig
}

// Validate checks that the scene grids are present and share a shape.
func (s Scene) Validate() error {
	if s.Elevation == nil || s.Grids == nil {
		return fmt.Errorf("scene is missing grids")
	}
	if s.Grids.Slope == nil || s.Grids.Aspect == nil || s.Grids.Hillshade == nil {
		return fmt.Errorf("scene is missing a derivative grid")
	}
	rows, cols := s.Elevation.Dims()
	for name, g := range map[string]*mat.Dense{"slope": s.Grids.Slope, "aspect": s.Grids.Aspect, "hillshade": s.Grids.Hillshade} {
		if r, c := g.Dims(); r != rows || c != cols {
			return fmt.Errorf("%s grid is %dx%d, elevation is %dx%d", name, r, c, rows, cols)
		}
	}
	return nil
}

// Renderer writes a scene and returns the paths it wrote.
type Renderer interface {
	Render(ctx context.Context, scene Scene) ([]string, error)
}

// layer is one grid to draw, with its value range and the values to skip.
type layer struct {
	name      string
	title     string
	grid      mat.Matrix
	min, max  float64
	sentinels []float64
}

func (s Scene) layers() []layer {
	lo, hi := s.Elevation.Range()
	if !(hi > lo) {
		hi = lo + 1
	}
	return []layer{
		{name: "elevation", title: "Elevation model", grid: s.Elevation.Matrix(), min: lo, max: hi},
		{name: "hillshade", title: "Hillshade model", grid: s.Grids.Hillshade, min: 0, max: 255, sentinels: []float64{terrain.NoData}},
		{name: "slope", title: "Slope model", grid: s.Grids.Slope, min: 0, max: 90, sentinels: []float64{terrain.NoData}},
		{name: "aspect", title: "Aspect model", grid: s.Grids.Aspect, min: 0, max: 360, sentinels: []float64{terrain.NoData, terrain.FlatAspect}},
	}
}

// masked returns NaN for sentinel cells so renderers can skip them.
func (l layer) masked(i, j int) float64 {
	v := l.grid.At(i, j)
	for _, s := range l.sentinels {
		if v == s {
			return math.NaN()
		}
	}
	return v
}
