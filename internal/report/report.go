// Package report summarises a terrain run and writes it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/terrain"
)

// FileName is the report written into the run output directory.
const FileName = "report.json"

// GridStats summarises the valid cells of one grid.
type GridStats struct {
	Count   int     `json:"count"`   // cells with a computed value
	Skipped int     `json:"skipped"` // sentinel or NaN cells
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
}

// Summarize computes GridStats over the cells of g that are neither NaN nor
// one of the sentinel values. With no valid cells every statistic is zero.
func Summarize(g mat.Matrix, sentinels ...float64) GridStats {
	rows, cols := g.Dims()
	vals := make([]float64, 0, rows*cols)
	var st GridStats
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := g.At(i, j)
			if math.IsNaN(v) || isSentinel(v, sentinels) {
				st.Skipped++
				continue
			}
			vals = append(vals, v)
		}
	}
	st.Count = len(vals)
	if st.Count == 0 {
		return st
	}
	st.Min = floats.Min(vals)
	st.Max = floats.Max(vals)
	st.Mean, st.StdDev = stat.MeanStdDev(vals, nil)
	if st.Count == 1 {
		st.StdDev = 0
	}
	return st
}

func isSentinel(v float64, sentinels []float64) bool {
	for _, s := range sentinels {
		if v == s {
			return true
		}
	}
	return false
}

// CountEqual returns how many cells of g equal v.
func CountEqual(g mat.Matrix, v float64) int {
	rows, cols := g.Dims()
	n := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if g.At(i, j) == v {
				n++
			}
		}
	}
	return n
}

// Report is the JSON summary of one run.
type Report struct {
	RunID     string                 `json:"run_id"`
	Version   string                 `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	Surface   string                 `json:"surface"`
	Rows      int                    `json:"rows"`
	Cols      int                    `json:"cols"`
	CellSize  float64                `json:"cell_size"`
	Lighting  terrain.LightingConfig `json:"lighting"`
	Duration  time.Duration          `json:"duration_ns"`
	Elevation GridStats              `json:"elevation"`
	Slope     GridStats              `json:"slope"`
	Aspect    GridStats              `json:"aspect"`
	Hillshade GridStats              `json:"hillshade"`
	FlatCells int                    `json:"flat_cells"`
	Outputs   []string               `json:"outputs,omitempty"`
}

// Build fills the grid-derived fields of a Report.
func Build(elev *terrain.ElevationGrid, grids *terrain.DerivativeGrids) Report {
	rows, cols := elev.Dims()
	dx, _ := elev.CellSize()
	return Report{
		Rows:      rows,
		Cols:      cols,
		CellSize:  dx,
		Elevation: Summarize(elev.Matrix()),
		Slope:     Summarize(grids.Slope, terrain.NoData),
		Aspect:    Summarize(grids.Aspect, terrain.NoData, terrain.FlatAspect),
		Hillshade: Summarize(grids.Hillshade, terrain.NoData),
		FlatCells: CountEqual(grids.Aspect, terrain.FlatAspect),
	}
}

// Write stores r as indented JSON in dir and returns the file path.
func Write(fsys fsutil.FileSystem, dir string, r Report) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
