package converters

import (
	"fmt"
	"sync"

	proj4 "github.com/xeonx/proj4"

	"github.com/hobu-go/entwine/internal/geometry"
)

const wgs84Srid = 4326

// ProjConverter implements CoordinateConverter on top of proj4, the
// teacher's paired projection library for exactly this interface
// (go.mod lists proj4 as a direct dependency with geom pulled in
// alongside it). Projections are keyed by SRID and opened lazily, since
// a build typically touches at most a handful of distinct SRSes.
type ProjConverter struct {
	mu    sync.Mutex
	cache map[int]*proj4.Proj
}

// NewProjConverter constructs a converter with an empty projection cache.
func NewProjConverter() *ProjConverter {
	return &ProjConverter{cache: make(map[int]*proj4.Proj)}
}

var _ CoordinateConverter = (*ProjConverter)(nil)

func (c *ProjConverter) projFor(srid int) (*proj4.Proj, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.cache[srid]; ok {
		return p, nil
	}

	p, err := proj4.InitPlus(fmt.Sprintf("+init=epsg:%d", srid))
	if err != nil {
		return nil, fmt.Errorf("converters: init srid %d: %w", srid, err)
	}
	c.cache[srid] = p
	return p, nil
}

func (c *ProjConverter) ConvertCoordinateSrid(sourceSrid, targetSrid int, coord geometry.Point) (geometry.Point, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	src, err := c.projFor(sourceSrid)
	if err != nil {
		return geometry.Point{}, err
	}
	dst, err := c.projFor(targetSrid)
	if err != nil {
		return geometry.Point{}, err
	}

	xs := []float64{coord.X}
	ys := []float64{coord.Y}
	zs := []float64{coord.Z}
	if err := proj4.TransformRaw(src, dst, xs, ys, zs); err != nil {
		return geometry.Point{}, fmt.Errorf("converters: transform %d->%d: %w", sourceSrid, targetSrid, err)
	}

	return geometry.Point{X: xs[0], Y: ys[0], Z: zs[0]}, nil
}

func (c *ProjConverter) Convert2DBoundingboxToWGS84Region(bbox geometry.Bounds, srid int) (geometry.Bounds, error) {
	min, err := c.ConvertCoordinateSrid(srid, wgs84Srid, bbox.Min)
	if err != nil {
		return geometry.Bounds{}, err
	}
	max, err := c.ConvertCoordinateSrid(srid, wgs84Srid, bbox.Max)
	if err != nil {
		return geometry.Bounds{}, err
	}
	return geometry.Bounds{Min: min, Max: max}, nil
}

func (c *ProjConverter) ConvertToWGS84Cartesian(coord geometry.Point, sourceSrid int) (geometry.Point, error) {
	return c.ConvertCoordinateSrid(sourceSrid, wgs84Srid, coord)
}

// Cleanup releases every cached proj4 handle. Called once by
// Inference.Go after its worker pool joins, mirroring pkg.Tiler.RunTiler's
// explicit end-of-run Cleanup() call in the teacher.
func (c *ProjConverter) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for srid, p := range c.cache {
		p.Close()
		delete(c.cache, srid)
	}
}
