package inference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hobu-go/entwine/internal/converters"
	"github.com/hobu-go/entwine/internal/geometry"
)

// srsFor decides which SRS a file probe should reproject from: Hammer
// forces reprojection.In even when the file's own header supplied an
// SRS, otherwise the header SRS wins when present. An empty result
// means no source SRS is known; processOne then skips reprojection.
func srsFor(reproj *geometry.Reprojection, headerSRS string) string {
	if reproj.Hammer || headerSRS == "" {
		return reproj.In
	}
	return headerSRS
}

// parseEPSG parses an "EPSG:<code>" string into its numeric SRID, the
// form every Reprojection.In/Out value takes in this module.
func parseEPSG(srs string) (int, error) {
	const prefix = "EPSG:"
	if !strings.HasPrefix(strings.ToUpper(srs), prefix) {
		return 0, fmt.Errorf("inference: %q is not an EPSG:<code> SRS", srs)
	}
	srid, err := strconv.Atoi(srs[len(prefix):])
	if err != nil {
		return 0, fmt.Errorf("inference: %q is not an EPSG:<code> SRS: %w", srs, err)
	}
	return srid, nil
}

// reprojectBounds converts every corner of b from srcSrid to dstSrid,
// regrowing the bounds from the transformed corners the same way
// cesiumReorient regrows global bounds from per-file transformed
// bounds.
func reprojectBounds(conv converters.CoordinateConverter, b geometry.Bounds, srcSrid, dstSrid int) (geometry.Bounds, error) {
	corners := [8]geometry.Point{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	out := geometry.Expander
	for _, c := range corners {
		transformed, err := conv.ConvertCoordinateSrid(srcSrid, dstSrid, c)
		if err != nil {
			return geometry.Bounds{}, err
		}
		out = out.Grow(transformed)
	}
	return out, nil
}
