package terrain

import (
	"context"
	"math"
	"runtime"
	"sync"
)

// Options tunes how ComputeContext schedules work. The zero value is valid.
type Options struct {
	// Workers is the number of goroutines processing rows. Zero or negative
	// means runtime.GOMAXPROCS(0).
	Workers int

	// OnRow, when set, is called once for every finished interior row. It is
	// called from worker goroutines and must be safe for concurrent use.
	OnRow func(row int)
}

// Validate checks every precondition of Compute.
func Validate(elev *ElevationGrid, light LightingConfig) error {
	if elev == nil || elev.heights == nil {
		return invalidf("nil elevation grid")
	}
	rows, cols := elev.Dims()
	if rows < MinGridSize || cols < MinGridSize {
		return invalidf("grid must be at least %dx%d, got %dx%d", MinGridSize, MinGridSize, rows, cols)
	}
	dx, dy := elev.CellSize()
	if !(dx > 0) || !(dy > 0) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return invalidf("cell size must be positive and finite, got dx=%v dy=%v", dx, dy)
	}
	return light.Validate()
}

// Compute derives slope, aspect and hillshade for every interior cell of
// elev. On invalid input it returns an error wrapping ErrInvalidInput and no
// grids.
func Compute(elev *ElevationGrid, light LightingConfig) (*DerivativeGrids, error) {
	return ComputeContext(context.Background(), elev, light, Options{})
}

// ComputeContext is Compute with cancellation and scheduling options.
// Interior rows are independent, so they are fanned out to a fixed pool of
// workers that each write disjoint rows of the output. The result does not
// depend on the worker count. If ctx is cancelled before every row has been
// handed out the whole grid is abandoned and ctx.Err() is returned.
func ComputeContext(ctx context.Context, elev *ElevationGrid, light LightingConfig, opts Options) (*DerivativeGrids, error) {
	if err := Validate(elev, light); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := elev.Dims()
	dx, dy := elev.CellSize()
	out := newDerivativeGrids(rows, cols)
	il := newIllumination(light)

	interior := rows - 2
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > interior {
		workers = interior
	}

	rowCh := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range rowCh {
				computeRow(elev, out, il, i, cols, dx, dy)
				if opts.OnRow != nil {
					opts.OnRow(i)
				}
			}
		}()
	}

	var err error
feed:
	for i := 1; i < rows-1; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case rowCh <- i:
		}
	}
	close(rowCh)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}

func computeRow(elev *ElevationGrid, out *DerivativeGrids, il illumination, i, cols int, dx, dy float64) {
	north := elev.heights.RawRowView(i - 1)
	mid := elev.heights.RawRowView(i)
	south := elev.heights.RawRowView(i + 1)

	slope := out.Slope.RawRowView(i)
	aspect := out.Aspect.RawRowView(i)
	shade := out.Hillshade.RawRowView(i)

	for j := 1; j < cols-1; j++ {
		c := il.evaluate(windowAt(north, mid, south, j), dx, dy)
		slope[j] = c.SlopeDeg
		aspect[j] = c.AspectDeg
		shade[j] = c.Hillshade
	}
}
