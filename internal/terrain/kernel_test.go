package terrain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/terrain.report/internal/terrain"
)

func TestHornGradient(t *testing.T) {
	t.Parallel()

	// heights = 2*col + 3*(2-row), cell size 0.5
	w := terrain.Window{
		NW: 6, N: 8, NE: 10,
		W: 3, Z: 5, E: 7,
		SW: 0, S: 2, SE: 4,
	}
	dzdx, dzdy := terrain.HornGradient(w, 0.5, 0.5)
	assert.InDelta(t, 4.0, dzdx, 1e-12)
	assert.InDelta(t, 6.0, dzdy, 1e-12)
}

func TestHornGradient_AnisotropicCellSize(t *testing.T) {
	t.Parallel()

	w := terrain.Window{NW: 1, N: 1, NE: 1, W: 0, Z: 0, E: 0, SW: -1, S: -1, SE: -1}
	dzdx, dzdy := terrain.HornGradient(w, 1, 4)
	assert.Equal(t, 0.0, dzdx)
	assert.InDelta(t, 0.25, dzdy, 1e-12)
}

func TestBearing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"east", 0, 90},
		{"north", math.Pi / 2, 0},
		{"north-west", 3 * math.Pi / 4, 315},
		{"west", math.Pi, 270},
		{"west from below", -math.Pi, 270},
		{"south", -math.Pi / 2, 180},
		{"south-east", -math.Pi / 4, 135},
		{"north-east", math.Pi / 4, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := terrain.Bearing(tt.angle)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
		})
	}
}

func TestAspectDegrees_Cardinal(t *testing.T) {
	t.Parallel()

	// Aspect is where water runs: opposite to the rise.
	tests := []struct {
		name       string
		dzdx, dzdy float64
		want       float64
	}{
		{"rises east faces west", 1, 0, 270},
		{"rises west faces east", -1, 0, 90},
		{"rises north faces south", 0, 1, 180},
		{"rises south faces north", 0, -1, 0},
		{"rises north-east faces south-west", 1, 1, 225},
		{"rises south-west faces north-east", -1, -1, 45},
		{"flat", 0, 0, terrain.FlatAspect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, terrain.AspectDegrees(tt.dzdx, tt.dzdy), 1e-9)
		})
	}
}

func TestAspectDegrees_NegatedGradientRotates180(t *testing.T) {
	t.Parallel()

	grads := [][2]float64{
		{1, 0}, {0, 1}, {-1, 0}, {0, -1},
		{0.3, 0.7}, {-2.5, 0.1}, {1e-9, -4}, {123, -456},
	}
	for _, g := range grads {
		a := terrain.AspectDegrees(g[0], g[1])
		b := terrain.AspectDegrees(-g[0], -g[1])
		diff := math.Mod(b-a+360, 360)
		assert.InDelta(t, 180.0, diff, 1e-9, "gradient %v", g)
	}
}

func TestEvaluateCell_SelfShadowClampsToZero(t *testing.T) {
	t.Parallel()

	// steep face dropping to the south-east, sun low in the north-west
	w := terrain.Window{
		NW: 40, N: 30, NE: 20,
		W: 30, Z: 20, E: 10,
		SW: 20, S: 10, SE: 0,
	}
	c := terrain.EvaluateCell(w, 1, 1, terrain.LightingConfig{AltitudeDeg: 10, AzimuthDeg: 315})
	assert.InDelta(t, 135.0, c.AspectDeg, 1e-9)
	assert.Equal(t, 0.0, c.Hillshade)
}

func TestEvaluateCell_FacingSunBrighterThanFlat(t *testing.T) {
	t.Parallel()

	light := terrain.LightingConfig{AltitudeDeg: 30, AzimuthDeg: 315}
	flat := terrain.EvaluateCell(terrain.Window{}, 1, 1, light)
	// gentle face dropping to the north-west, towards the sun
	w := terrain.Window{
		NW: 0, N: 1, NE: 2,
		W: 1, Z: 2, E: 3,
		SW: 2, S: 3, SE: 4,
	}
	lit := terrain.EvaluateCell(w, 1, 1, light)
	assert.InDelta(t, 315.0, lit.AspectDeg, 1e-9)
	assert.Greater(t, lit.Hillshade, flat.Hillshade)
	assert.LessOrEqual(t, lit.Hillshade, 255.0)
}

func TestEvaluateCell_SunStraightDownOnFlatIsFull(t *testing.T) {
	t.Parallel()

	c := terrain.EvaluateCell(terrain.Window{Z: 5, N: 5, S: 5, E: 5, W: 5, NE: 5, NW: 5, SE: 5, SW: 5}, 1, 1,
		terrain.LightingConfig{AltitudeDeg: 90, AzimuthDeg: 0})
	assert.InDelta(t, 255.0, c.Hillshade, 1e-9)
	assert.Equal(t, terrain.FlatAspect, c.AspectDeg)
	assert.Equal(t, 0.0, c.SlopeDeg)
}

func TestEvaluateCell_ExtremeGradientStaysBelow90(t *testing.T) {
	t.Parallel()

	w := terrain.Window{NE: 1e300, E: 1e300, SE: 1e300}
	c := terrain.EvaluateCell(w, 1, 1, terrain.DefaultLighting())
	assert.Less(t, c.SlopeDeg, 90.0)
}
