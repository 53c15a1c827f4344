package terrain

import "math"

// Window is the 3×3 neighbourhood of a cell, named by compass direction.
//
//	NW N NE
//	W  Z  E
//	SW S SE
type Window struct {
	NW, N, NE float64
	W, Z, E   float64
	SW, S, SE float64
}

// Cell is the full derivative set for one interior cell.
type Cell struct {
	DzDx      float64 // rise per unit distance eastward
	DzDy      float64 // rise per unit distance northward
	SlopeDeg  float64
	AspectDeg float64 // compass bearing, or FlatAspect
	Hillshade float64
}

// HornGradient estimates the surface gradient with Horn's weighted
// differences. dzdx is positive when heights rise to the east and dzdy is
// positive when they rise to the north.
func HornGradient(w Window, dx, dy float64) (dzdx, dzdy float64) {
	dzdx = ((w.NE + 2*w.E + w.SE) - (w.NW + 2*w.W + w.SW)) / (8 * dx)
	dzdy = ((w.NW + 2*w.N + w.NE) - (w.SW + 2*w.S + w.SE)) / (8 * dy)
	return dzdx, dzdy
}

// SlopeRadians returns the inclination of the plane with the given gradient.
func SlopeRadians(dzdx, dzdy float64) float64 {
	return math.Atan(math.Sqrt(dzdx*dzdx + dzdy*dzdy))
}

// DownslopeAngle returns the direction of steepest descent as a mathematical
// angle in radians, counter-clockwise from east, in (-π, π]. This is the
// frame the hillshade azimuth is expressed in.
func DownslopeAngle(dzdx, dzdy float64) float64 {
	return math.Atan2(-dzdy, -dzdx)
}

// Bearing converts a mathematical angle (radians, counter-clockwise from
// east) to a compass bearing in degrees, clockwise from north, in [0, 360).
func Bearing(angle float64) float64 {
	deg := angle * 180 / math.Pi
	switch {
	case deg < 0:
		return 90 - deg
	case deg > 90:
		return 360 - deg + 90
	default:
		return 90 - deg
	}
}

// AspectDegrees returns the compass bearing of steepest descent, or
// FlatAspect when the gradient is exactly zero.
func AspectDegrees(dzdx, dzdy float64) float64 {
	if dzdx == 0 && dzdy == 0 {
		return FlatAspect
	}
	return Bearing(DownslopeAngle(dzdx, dzdy))
}

// illumination caches the sun terms shared by every cell of one run.
type illumination struct {
	cosZenith float64
	sinZenith float64
	azimuth   float64 // radians, counter-clockwise from east
}

func newIllumination(l LightingConfig) illumination {
	zenith := (90 - l.AltitudeDeg) * math.Pi / 180
	azimuth := math.Mod((360-l.AzimuthDeg+90)*math.Pi/180, 2*math.Pi)
	return illumination{
		cosZenith: math.Cos(zenith),
		sinZenith: math.Sin(zenith),
		azimuth:   azimuth,
	}
}

// shade applies the Lambertian model. Faces turned away from the sun give a
// negative dot product and clamp to zero.
func (il illumination) shade(slope, aspect float64) float64 {
	v := 255 * (il.cosZenith*math.Cos(slope) + il.sinZenith*math.Sin(slope)*math.Cos(il.azimuth-aspect))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func (il illumination) evaluate(w Window, dx, dy float64) Cell {
	dzdx, dzdy := HornGradient(w, dx, dy)
	slope := SlopeRadians(dzdx, dzdy)

	c := Cell{DzDx: dzdx, DzDy: dzdy, SlopeDeg: slope * 180 / math.Pi}
	// atan saturates to exactly π/2 for extreme gradients
	if c.SlopeDeg >= 90 {
		c.SlopeDeg = math.Nextafter(90, 0)
	}

	if dzdx == 0 && dzdy == 0 {
		c.AspectDeg = FlatAspect
		c.Hillshade = il.shade(slope, 0)
		return c
	}
	aspect := DownslopeAngle(dzdx, dzdy)
	c.AspectDeg = Bearing(aspect)
	c.Hillshade = il.shade(slope, aspect)
	return c
}

// EvaluateCell computes every derivative for a single window. It does not
// validate its arguments; use Validate or Compute for checked input.
func EvaluateCell(w Window, dx, dy float64, l LightingConfig) Cell {
	return newIllumination(l).evaluate(w, dx, dy)
}
