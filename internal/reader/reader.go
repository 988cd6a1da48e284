// Package reader defines the point-cloud reader contract the Inference
// Engine and File Probe consume. The core specification treats the
// reader purely as an external collaborator; this package only pins
// down the interface plus the small value types that cross the
// boundary. A concrete adapter lives in the ply subpackage.
package reader

import (
	"context"

	"github.com/hobu-go/entwine/internal/geometry"
)

// Preview is the lightweight, header-only summary File Probe extracts.
type Preview struct {
	NumPoints uint64
	Bounds    geometry.Bounds
	SRS       string
	Scale     *geometry.Point
	DimNames  []string
	Metadata  map[string]interface{}
}

// PointSink receives points one at a time during a full streaming scan
// (used when the caller doesn't trust headers). It must not retain p
// beyond the call, since the reader may reuse the backing value.
type PointSink func(p geometry.Point) error

// Reader is the consumed point-cloud parsing contract.
type Reader interface {
	// Good reports whether path is a format this reader understands,
	// without fully opening it.
	Good(path string) bool

	// Preview extracts header-only information. Returns (nil, nil) if
	// the file can't be read, matching the core spec's "returns nothing
	// if the file is unreadable" contract (not an error).
	Preview(ctx context.Context, path string, reproj *geometry.Reprojection) (*Preview, error)

	// Run streams every point in path through sink, applying reproj and
	// then transform (a 4x4 row-major matrix), if given. Returns false
	// if the file could not be opened for streaming.
	Run(ctx context.Context, sink PointSink, path string, reproj *geometry.Reprojection, transform []float64) (bool, error)

	// Transform applies a 4x4 row-major matrix to a bounds, conservatively
	// growing the result to cover all eight transformed corners.
	Transform(b geometry.Bounds, matrix []float64) geometry.Bounds

	// DefaultDimensionType is this format's canonical type for a named
	// dimension, used when synthesizing a Schema from observed dim
	// names. Implementations should return (geometry.Floating, 8, false)
	// for unrecognized names so the caller can apply the spec's
	// fallback-to-64-bit-float rule.
	DefaultDimensionType(name string) (geometry.BaseType, int, bool)
}
