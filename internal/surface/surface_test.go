package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/terrain.report/internal/terrain"
)

func TestPeaks_KnownValues(t *testing.T) {
	t.Parallel()

	// at the origin only the middle term survives: -10*0 - 1/3*e^-1 + 3*e^-1
	want := 3*math.Exp(-1) - math.Exp(-1)/3
	assert.InDelta(t, want, Peaks(0, 0), 1e-12)
	// far from the hills the surface is flat
	assert.InDelta(t, 0, Peaks(10, 10), 1e-12)
}

func TestSampler_ShapeMatchesTruncatedSpan(t *testing.T) {
	t.Parallel()

	s := Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 0.1, CellSize: 1}
	rows, cols := s.Shape()
	assert.Equal(t, 60, rows)
	assert.Equal(t, 60, cols)

	g, err := s.Sample()
	require.NoError(t, err)
	r, c := g.Dims()
	assert.Equal(t, 60, r)
	assert.Equal(t, 60, c)
}

func TestSampler_NorthUp(t *testing.T) {
	t.Parallel()

	s := Sampler{Func: Plane(0, 1), Extent: Extent{XMin: 0, XMax: 4, YMin: 0, YMax: 4}, Resolution: 1, CellSize: 1}
	g, err := s.Sample()
	require.NoError(t, err)

	// first row is the northern edge, i.e. y = YMax
	assert.InDelta(t, 4.0, g.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, g.At(3, 0), 1e-12)

	out, err := terrain.Compute(g, terrain.DefaultLighting())
	require.NoError(t, err)
	// rising north means draining south
	assert.InDelta(t, 180.0, out.Aspect.At(1, 1), 1e-9)
}

func TestSampler_Offsets(t *testing.T) {
	t.Parallel()

	base := Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 0.25, CellSize: 1}

	plain, err := base.Sample()
	require.NoError(t, err)
	lo, hi := plain.Range()
	assert.Less(t, lo, 0.0)

	raised := base
	raised.Offset = OffsetRaiseByMax
	g, err := raised.Sample()
	require.NoError(t, err)
	rlo, rhi := g.Range()
	assert.InDelta(t, lo+hi, rlo, 1e-9)
	assert.InDelta(t, 2*hi, rhi, 1e-9)
	assert.Greater(t, rlo, 0.0)

	zeroed := base
	zeroed.Offset = OffsetMinToZero
	g, err = zeroed.Sample()
	require.NoError(t, err)
	zlo, zhi := g.Range()
	assert.InDelta(t, 0.0, zlo, 1e-12)
	assert.InDelta(t, hi-lo, zhi, 1e-9)
}

func TestSampler_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Sampler
	}{
		{"no func", Sampler{Extent: DefaultExtent, Resolution: 1, CellSize: 1}},
		{"zero resolution", Sampler{Func: Peaks, Extent: DefaultExtent, CellSize: 1}},
		{"zero cell size", Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 1}},
		{"empty extent", Sampler{Func: Peaks, Extent: Extent{XMin: 1, XMax: 1, YMin: 0, YMax: 1}, Resolution: 0.1, CellSize: 1}},
		{"coarser than extent", Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 10, CellSize: 1}},
		{"too many samples", Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 1e-6, CellSize: 1}},
		{"resolution underflows", Sampler{Func: Peaks, Extent: DefaultExtent, Resolution: 5e-324, CellSize: 1}},
		{"infinite extent", Sampler{Func: Peaks, Extent: Extent{XMin: math.Inf(-1), XMax: 0, YMin: 0, YMax: 1}, Resolution: 1, CellSize: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.s.Sample()
			assert.Error(t, err)
		})
	}
}

func TestSampler_ValidateAcceptsSampleCap(t *testing.T) {
	t.Parallel()

	// 8192x8192 = 1<<26 samples
	s := Sampler{Func: Peaks, Extent: Extent{XMin: 0, XMax: 8192, YMin: 0, YMax: 8192}, Resolution: 1, CellSize: 1}
	assert.NoError(t, s.Validate())

	s.Extent.XMax = 8193
	assert.Error(t, s.Validate())
}

func TestNamed(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		fn, err := Named(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}
	_, err := Named(" Peaks ")
	assert.NoError(t, err)
	_, err = Named("volcano")
	assert.Error(t, err)
}

func TestCone(t *testing.T) {
	t.Parallel()

	c := Cone(3, 3)
	assert.Equal(t, 3.0, c(0, 0))
	assert.InDelta(t, 1.5, c(1.5, 0), 1e-12)
	assert.Equal(t, 0.0, c(5, 0))
}
