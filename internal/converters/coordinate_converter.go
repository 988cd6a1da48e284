package converters

import (
	"github.com/hobu-go/entwine/internal/geometry"
)

// CoordinateConverter reprojects points and bounds between spatial
// reference systems, identified by EPSG SRID. Kept from the teacher's
// own interface shape, retargeted at this module's geometry.Point/
// geometry.Bounds instead of the teacher's geometry.Coordinate/
// BoundingBox (those types lived in a package the retrieval pack
// didn't include).
type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid, targetSrid int, coord geometry.Point) (geometry.Point, error)
	Convert2DBoundingboxToWGS84Region(bbox geometry.Bounds, srid int) (geometry.Bounds, error)
	ConvertToWGS84Cartesian(coord geometry.Point, sourceSrid int) (geometry.Point, error)
	Cleanup()
}
