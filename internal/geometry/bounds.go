package geometry

import (
	"fmt"
	"math"
)

// Expander is the sentinel "no points seen yet" bounds: min is the largest
// finite float64 in every component, max is its negation. Any Grow with a
// real value yields valid bounds.
// Ported from the anonymous `expander` constant in entwine::Inference.
var Expander = Bounds{
	Min: Point{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
	Max: Point{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
}

// Bounds is an axis-aligned 3D box.
type Bounds struct {
	Min Point
	Max Point
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%s, %s]", b.Min, b.Max)
}

// HasValue reports whether any point has ever been grown into b, as a
// structural alternative to comparing against Expander by value.
func (b Bounds) HasValue() bool {
	return b != Expander
}

// Grow expands b to include p, returning the new bounds.
func (b Bounds) Grow(p Point) Bounds {
	return Bounds{Min: Min(b.Min, p), Max: Max(b.Max, p)}
}

// GrowBounds expands b to include all of other.
func (b Bounds) GrowBounds(other Bounds) Bounds {
	return Bounds{Min: Min(b.Min, other.Min), Max: Max(b.Max, other.Max)}
}

// Mid returns the midpoint of b.
func (b Bounds) Mid() Point {
	return Point{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Width/Depth/Height return the per-axis extents.
func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Depth() float64  { return b.Max.Y - b.Min.Y }
func (b Bounds) Height() float64 { return b.Max.Z - b.Min.Z }

// Cubeify expands b to the smallest enclosing cube centered on its
// midpoint, with side equal to the largest extent rounded up to the
// nearest whole unit. If delta is non-nil, the side is additionally
// quantized to a multiple of the delta's (minimum) scale component so
// that the cube lands on an integer number of delta units.
func (b Bounds) Cubeify(delta *Delta) Bounds {
	side := math.Max(b.Width(), math.Max(b.Depth(), b.Height()))
	side = math.Ceil(side)

	if delta != nil {
		scale := math.Min(delta.Scale.X, math.Min(delta.Scale.Y, delta.Scale.Z))
		if scale > 0 {
			units := math.Ceil(side / scale)
			side = units * scale
		}
	}

	radius := side / 2
	mid := b.Mid()

	return Bounds{
		Min: Point{X: mid.X - radius, Y: mid.Y - radius, Z: mid.Z - radius},
		Max: Point{X: mid.X + radius, Y: mid.Y + radius, Z: mid.Z + radius},
	}
}

// Deltify rewrites b in quantized delta-space: (coord - offset) / scale.
func (b Bounds) Deltify(d *Delta) Bounds {
	return Bounds{Min: d.Apply(b.Min), Max: d.Apply(b.Max)}
}

// Undeltify is the inverse of Deltify: coord*scale + offset. If d is nil,
// b is returned unchanged (no delta was ever applied).
func (b Bounds) Undeltify(d *Delta) Bounds {
	if d == nil {
		return b
	}
	return Bounds{Min: d.Invert(b.Min), Max: d.Invert(b.Max)}
}

// Expand grows b symmetrically by eps in every direction. Used to derive
// Metadata.BoundsEpsilon from Metadata.Bounds.
func (b Bounds) Expand(eps float64) Bounds {
	return Bounds{
		Min: Point{X: b.Min.X - eps, Y: b.Min.Y - eps, Z: b.Min.Z - eps},
		Max: Point{X: b.Max.X + eps, Y: b.Max.Y + eps, Z: b.Max.Z + eps},
	}
}

// Contains reports whether other is entirely within b (inclusive).
func (b Bounds) Contains(other Bounds) bool {
	return other.Min.X >= b.Min.X && other.Min.Y >= b.Min.Y && other.Min.Z >= b.Min.Z &&
		other.Max.X <= b.Max.X && other.Max.Y <= b.Max.Y && other.Max.Z <= b.Max.Z
}
