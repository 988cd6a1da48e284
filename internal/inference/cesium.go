package inference

import (
	"github.com/golang/geo/r3"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/reader"
)

// calcTransformation computes the geocentric (EPSG:4978) to
// tangent-plane (+Z up) transformation matrix for nativeBounds, ported
// verbatim from entwine::Inference::calcTransformation.
func calcTransformation(nativeBounds geometry.Bounds, rdr reader.Reader) []float64 {
	p := nativeBounds.Mid().Vector()
	up := p.Normalize()

	northPole := r3.Vector{X: 0, Y: 0, Z: 1}
	proj := up.Mul(up.Dot(northPole))
	north := northPole.Sub(proj).Normalize()
	east := north.Cross(up)

	rotation := rotationFromBasis(east, north, up)

	tentativeCenter := rdr.Transform(nativeBounds, rotation)
	translation := translationTo(tentativeCenter.Mid().Vector())

	return multiply4(translation, rotation)
}
