package inference

import "github.com/golang/geo/r3"

// identity4 is the 4x4 identity matrix, row-major.
func identity4() []float64 {
	return []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// multiply4 returns a*b for two row-major 4x4 matrices, matching the
// matrix.Multiply semantics referenced by entwine::Inference::
// calcTransformation: the result applied to a point p equals a applied
// to (b applied to p).
func multiply4(a, b []float64) []float64 {
	out := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[r*4+k] * b[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// rotationFromBasis builds a rotation matrix whose rows are the given
// orthonormal basis vectors, per calcTransformation's [east; north; up]
// row layout.
func rotationFromBasis(east, north, up r3.Vector) []float64 {
	return []float64{
		east.X, east.Y, east.Z, 0,
		north.X, north.Y, north.Z, 0,
		up.X, up.Y, up.Z, 0,
		0, 0, 0, 1,
	}
}

// translationTo builds a translation matrix that moves c to the origin.
func translationTo(c r3.Vector) []float64 {
	return []float64{
		1, 0, 0, -c.X,
		0, 1, 0, -c.Y,
		0, 0, 1, -c.Z,
		0, 0, 0, 1,
	}
}
