package testutil

import (
	"errors"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("unexpected error", func(t *testing.T) {
		AssertNoError(t, errors.New("boom"))
	})
	if ok {
		t.Fatal("expected subtest to fail when error is non-nil")
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("expected"))
}

func TestAssertFloatNear_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("outside tolerance", func(t *testing.T) {
		AssertFloatNear(t, "v", 1.0, 1.1, 0.01)
	})
	if ok {
		t.Fatal("expected subtest to fail outside tolerance")
	}
}

func TestPlaneGrid(t *testing.T) {
	t.Parallel()

	g := PlaneGrid(t, 4, 3, 2, 1, 10, 1)
	rows, cols := g.Dims()
	if rows != 4 || cols != 3 {
		t.Fatalf("dims = %dx%d, want 4x3", rows, cols)
	}
	// south-west corner is the base height
	if got := g.At(3, 0); got != 10 {
		t.Errorf("At(3,0) = %v, want 10", got)
	}
	// north-east corner: 10 + 2*2 + 1*3
	if got := g.At(0, 2); got != 17 {
		t.Errorf("At(0,2) = %v, want 17", got)
	}
}

func TestGridFromRows(t *testing.T) {
	t.Parallel()

	g := GridFromRows(t, 2, []float64{1, 2}, []float64{3, 4})
	if got := g.At(1, 0); got != 3 {
		t.Errorf("At(1,0) = %v, want 3", got)
	}
	dx, dy := g.CellSize()
	if dx != 2 || dy != 2 {
		t.Errorf("cell size = (%v,%v), want (2,2)", dx, dy)
	}
}
