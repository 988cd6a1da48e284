package geometry

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Point is a plain 3D coordinate. It backs both native (floating-point)
// positions and, once a Delta is applied, quantized integer-valued
// coordinates stored as float64.
type Point struct {
	X, Y, Z float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Vector exposes p as an r3.Vector so the Cesium reorientation math in
// package inference can use Dot/Cross/Normalize directly.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// FromVector is the inverse of Vector.
func FromVector(v r3.Vector) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Min returns the componentwise minimum of a and b.
func Min(a, b Point) Point {
	return Point{X: minF(a.X, b.X), Y: minF(a.Y, b.Y), Z: minF(a.Z, b.Z)}
}

// Max returns the componentwise maximum of a and b.
func Max(a, b Point) Point {
	return Point{X: maxF(a.X, b.X), Y: maxF(a.Y, b.Y), Z: maxF(a.Z, b.Z)}
}

// Apply maps f over each component, returning a new Point.
func Apply(f func(float64) float64, p Point) Point {
	return Point{X: f(p.X), Y: f(p.Y), Z: f(p.Z)}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
