package geometry

// Delta is an affine (scale, offset) pair that quantizes floating
// coordinates into integer units: quantized = (native - offset) / scale.
type Delta struct {
	Scale  Point
	Offset Point
}

// HasZeroScale reports whether any component of scale is zero, which the
// Inference Engine treats as ErrInvalidScale for the file that reported it.
func HasZeroScale(scale Point) bool {
	return scale.X == 0 || scale.Y == 0 || scale.Z == 0
}

// Apply quantizes p into delta space.
func (d *Delta) Apply(p Point) Point {
	return Point{
		X: (p.X - d.Offset.X) / d.Scale.X,
		Y: (p.Y - d.Offset.Y) / d.Scale.Y,
		Z: (p.Z - d.Offset.Z) / d.Scale.Z,
	}
}

// Invert restores a quantized point to native coordinates.
func (d *Delta) Invert(p Point) Point {
	return Point{
		X: p.X*d.Scale.X + d.Offset.X,
		Y: p.Y*d.Scale.Y + d.Offset.Y,
		Z: p.Z*d.Scale.Z + d.Offset.Z,
	}
}

// RoundOffset computes the delta offset used by Inference.aggregate: the
// midpoint of the global bounds, componentwise rounded to a multiple of
// 10 (mid itself if it is already an exact multiple; for a non-negative
// mid, else the next larger one). Ported from entwine::Inference::aggregate's
// Point::apply lambda, which truncates to int64 then checks for an exact
// match before rounding up. Because int64 division truncates toward
// zero, a negative non-multiple can land a further multiple higher
// (-15 gives 0, -0.5 gives 10).
func RoundOffset(mid Point) Point {
	return Apply(roundToTen, mid)
}

func roundToTen(d float64) float64 {
	v := int64(d)
	if float64((v/10)*10) == d {
		return float64(v)
	}
	return float64(((v + 10) / 10) * 10)
}
