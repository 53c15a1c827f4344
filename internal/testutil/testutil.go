// Package testutil provides shared test fixtures and assertions.
//
// Grid fixtures build small elevation grids with known analytic
// derivatives so engine, renderer and store tests agree on their inputs.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/terrain.report/internal/terrain"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertFloatNear fails the test if got differs from want by more than tol.
func AssertFloatNear(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol || math.IsNaN(got) != math.IsNaN(want) {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

// GridFromRows builds an elevation grid from literal rows, north first.
func GridFromRows(t testing.TB, cellSize float64, rows ...[]float64) *terrain.ElevationGrid {
	t.Helper()
	if len(rows) == 0 {
		t.Fatal("GridFromRows: no rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			t.Fatalf("GridFromRows: row %d has %d values, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	g, err := terrain.NewElevationGrid(len(rows), cols, data, cellSize, cellSize)
	AssertNoError(t, err)
	return g
}

// ConstantGrid returns a flat rows×cols grid at height z.
func ConstantGrid(t testing.TB, rows, cols int, z, cellSize float64) *terrain.ElevationGrid {
	t.Helper()
	return PlaneGrid(t, rows, cols, 0, 0, z, cellSize)
}

// RampGrid returns a grid rising by rise per column, i.e. heights increase
// eastward with dz/dx = rise/cellSize.
func RampGrid(t testing.TB, rows, cols int, rise, cellSize float64) *terrain.ElevationGrid {
	t.Helper()
	return PlaneGrid(t, rows, cols, rise, 0, 0, cellSize)
}

// PlaneGrid returns z = base + eastRise*col + northRise*(rows-1-row). Both
// rises are per cell, so the analytic gradient is (eastRise/cellSize,
// northRise/cellSize).
func PlaneGrid(t testing.TB, rows, cols int, eastRise, northRise, base, cellSize float64) *terrain.ElevationGrid {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = base + eastRise*float64(j) + northRise*float64(rows-1-i)
		}
	}
	g, err := terrain.NewElevationGrid(rows, cols, data, cellSize, cellSize)
	AssertNoError(t, err)
	return g
}
