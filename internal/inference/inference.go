// Package inference drives the File Probe concurrently over a list of
// input files and aggregates their results into a single schema,
// bounds, point count and (optionally) a delta and a Cesium
// reorientation transform. Ported from entwine::Inference
// (original_source/entwine/util/inference.cpp, inference.hpp).
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/hobu-go/entwine/internal/converters"
	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/probe"
	"github.com/hobu-go/entwine/internal/reader"
	"github.com/hobu-go/entwine/internal/reader/ply"
	"github.com/hobu-go/entwine/internal/storage"
)

// Inference drives concurrent File Probe calls over a fixed set of
// input files and aggregates the result. Single-shot: Go may be called
// exactly once.
type Inference struct {
	fileInfo     []geometry.FileInfo
	reprojection *geometry.Reprojection
	trustHeaders bool
	allowDelta   bool
	tmpPath      string
	threads      int
	verbose      bool
	cesiumify    bool
	endpoint     storage.Endpoint

	// reader is not part of New's public signature (mirroring the
	// spec's single m_executor field in the original); it defaults to
	// the PLY adapter and may be overridden by tests in this package.
	reader reader.Reader

	// converter is non-nil only when reprojection is set; constructed
	// once on New so every probe goroutine shares its proj4 handle
	// cache instead of reopening projections per file.
	converter converters.CoordinateConverter

	started atomic.Bool
	done    atomic.Bool

	mu      sync.Mutex
	dimSet  map[string]struct{}
	dimVec  []string
	delta   *geometry.Delta
	srsSet  map[string]struct{}
	srsList []string

	numPoints      uint64
	bounds         geometry.Bounds
	schema         geometry.Schema
	transformation []float64
}

// New constructs an Inference over fileInfo. Threads below 1 are
// clamped to 1.
func New(
	fileInfo []geometry.FileInfo,
	reprojection *geometry.Reprojection,
	trustHeaders, allowDelta bool,
	tmpPath string,
	threads int,
	verbose, cesiumify bool,
	endpoint storage.Endpoint,
) *Inference {
	if threads < 1 {
		threads = 1
	}
	inf := &Inference{
		fileInfo:     fileInfo,
		reprojection: reprojection,
		trustHeaders: trustHeaders,
		allowDelta:   allowDelta,
		tmpPath:      tmpPath,
		threads:      threads,
		verbose:      verbose,
		cesiumify:    cesiumify,
		endpoint:     endpoint,
		reader:       ply.New(),
		dimSet:       make(map[string]struct{}),
		srsSet:       make(map[string]struct{}),
		bounds:       geometry.Expander,
	}
	if reprojection != nil {
		inf.converter = converters.NewProjConverter()
	}
	return inf
}

// Go runs the full probe-and-aggregate pipeline. It may be called
// exactly once; a second call returns ErrInferenceExhausted.
func (inf *Inference) Go(ctx context.Context) error {
	if !inf.started.CompareAndSwap(false, true) {
		return ErrInferenceExhausted
	}

	tmp, err := storage.Dispatch(inf.tmpPath)
	if err != nil {
		return fmt.Errorf("inference: tmp endpoint: %w", err)
	}

	jobs := make(chan int, inf.threads*5)
	errCh := make(chan error, len(inf.fileInfo))
	var anyValid atomic.Bool
	var wg sync.WaitGroup

	go func() {
		defer close(jobs)
		for i := range inf.fileInfo {
			if !inf.reader.Good(inf.fileInfo[i].Path) {
				inf.fileInfo[i].Status = geometry.Omitted
				continue
			}
			anyValid.Store(true)
			if inf.verbose {
				glog.Infof("inference: %d / %d: %s", i+1, len(inf.fileInfo), inf.fileInfo[i].Path)
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Add(inf.threads)
	for w := 0; w < inf.threads; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := inf.processOne(ctx, tmp, idx); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}
		}()
	}
	wg.Wait()

	if inf.converter != nil {
		inf.converter.Cleanup()
	}

	select {
	case err := <-errCh:
		return err
	default:
	}

	if !anyValid.Load() {
		return ErrNoReadableInputs
	}

	inf.aggregate()
	inf.makeSchema()

	if inf.numPoints == 0 {
		return ErrEmptyData
	}
	if inf.schema.Stride() == 0 {
		return ErrSchemaEmpty
	}
	if !inf.bounds.HasValue() {
		return ErrEmptyData
	}

	if inf.cesiumify {
		if inf.verbose {
			glog.Info("inference: transforming inference for Cesium")
		}
		if err := inf.cesiumReorient(); err != nil {
			return err
		}
	}

	inf.done.Store(true)
	return nil
}

func (inf *Inference) processOne(ctx context.Context, tmp storage.Endpoint, idx int) error {
	fi := &inf.fileInfo[idx]

	preview, err := probe.Probe(ctx, inf.endpoint, tmp, inf.reader, fi.Path, inf.reprojection, inf.trustHeaders)
	if err != nil {
		return err
	}
	if preview == nil {
		fi.Status = geometry.Omitted
		return nil
	}
	if preview.Scale != nil && geometry.HasZeroScale(*preview.Scale) {
		return ErrInvalidScale{Path: fi.Path}
	}

	inf.mu.Lock()
	for _, name := range preview.DimNames {
		if _, ok := inf.dimSet[name]; !ok {
			inf.dimSet[name] = struct{}{}
			inf.dimVec = append(inf.dimVec, name)
		}
	}
	if preview.Scale != nil {
		if inf.delta != nil {
			inf.delta.Scale = geometry.Min(inf.delta.Scale, *preview.Scale)
		} else if inf.allowDelta {
			inf.delta = &geometry.Delta{Scale: *preview.Scale}
		}
	}
	inf.mu.Unlock()

	bounds := preview.Bounds
	srs := preview.SRS

	// A file with no known source SRS (no header SRS and no
	// reprojection.In) keeps its probed bounds unreprojected.
	if inf.reprojection != nil && bounds.HasValue() && srsFor(inf.reprojection, preview.SRS) != "" {
		srcSRS := srsFor(inf.reprojection, preview.SRS)
		srcSrid, err := parseEPSG(srcSRS)
		if err != nil {
			return fmt.Errorf("inference: %q: %w", fi.Path, err)
		}
		dstSrid, err := parseEPSG(inf.reprojection.Out)
		if err != nil {
			return fmt.Errorf("inference: %q: %w", fi.Path, err)
		}
		reprojected, err := reprojectBounds(inf.converter, bounds, srcSrid, dstSrid)
		if err != nil {
			return fmt.Errorf("inference: %q: reprojecting bounds: %w", fi.Path, err)
		}
		bounds = reprojected
		srs = inf.reprojection.Out
	}

	fi.NumPoints = preview.NumPoints
	fi.Bounds = &bounds
	fi.SRS = srs
	fi.Metadata = preview.Metadata
	fi.Status = geometry.Inserted
	return nil
}

func (inf *Inference) aggregate() {
	inf.numPoints = 0
	inf.bounds = geometry.Expander

	for _, fi := range inf.fileInfo {
		inf.numPoints += fi.NumPoints
		if fi.Bounds != nil && fi.Bounds.HasValue() {
			inf.bounds = inf.bounds.GrowBounds(*fi.Bounds)
		}
		if fi.SRS != "" {
			if _, ok := inf.srsSet[fi.SRS]; !ok {
				inf.srsSet[fi.SRS] = struct{}{}
				inf.srsList = append(inf.srsList, fi.SRS)
			}
		}
	}

	if inf.delta != nil {
		inf.delta.Offset = geometry.RoundOffset(inf.bounds.Mid())
		for i := range inf.fileInfo {
			if inf.fileInfo[i].Bounds != nil {
				deltified := inf.fileInfo[i].Bounds.Deltify(inf.delta)
				inf.fileInfo[i].Bounds = &deltified
			}
		}
	}
}

func (inf *Inference) makeSchema() {
	dims := make([]geometry.DimInfo, 0, len(inf.dimVec))
	for _, name := range inf.dimVec {
		bt, size, ok := inf.reader.DefaultDimensionType(name)
		if !ok {
			bt, size = geometry.Floating, 8
		}
		dims = append(dims, geometry.DimInfo{Name: name, BaseType: bt, Size: size})
	}
	inf.schema = geometry.Schema{Dims: dims}
}

// cesiumReorient computes the geocentric-to-tangent-plane transform and
// applies it to every file's bounds, regrowing the global bounds from
// the transformed per-file bounds.
func (inf *Inference) cesiumReorient() error {
	matrix := calcTransformation(inf.bounds, inf.reader)

	regrown := geometry.Expander
	for i := range inf.fileInfo {
		fi := &inf.fileInfo[i]
		if fi.Bounds == nil {
			return ErrMissingBounds{Path: fi.Path}
		}
		transformed := inf.reader.Transform(*fi.Bounds, matrix)
		fi.Bounds = &transformed
		regrown = regrown.GrowBounds(transformed)
	}

	inf.transformation = matrix
	inf.bounds = regrown
	return nil
}

// NumPoints returns the aggregated point count across all files.
func (inf *Inference) NumPoints() (uint64, error) {
	if !inf.done.Load() {
		return 0, ErrInferenceIncomplete
	}
	return inf.numPoints, nil
}

// NativeBounds returns the aggregated bounds in native (pre-Delta)
// coordinates - reoriented, if Cesium reorientation ran.
func (inf *Inference) NativeBounds() (geometry.Bounds, error) {
	if !inf.done.Load() {
		return geometry.Bounds{}, ErrInferenceIncomplete
	}
	return inf.bounds, nil
}

// Schema returns the aggregated schema.
func (inf *Inference) Schema() (geometry.Schema, error) {
	if !inf.done.Load() {
		return geometry.Schema{}, ErrInferenceIncomplete
	}
	return inf.schema, nil
}

// Delta returns the aggregated delta, nil if delta inference was
// disallowed or no file reported a scale.
func (inf *Inference) Delta() (*geometry.Delta, error) {
	if !inf.done.Load() {
		return nil, ErrInferenceIncomplete
	}
	return inf.delta, nil
}

// Transformation returns the Cesium reorientation matrix, nil if
// cesiumify was false.
func (inf *Inference) Transformation() ([]float64, error) {
	if !inf.done.Load() {
		return nil, ErrInferenceIncomplete
	}
	return inf.transformation, nil
}

// FileInfo returns the per-file records, enriched by probing.
func (inf *Inference) FileInfo() []geometry.FileInfo {
	return inf.fileInfo
}

// SRSList returns the distinct SRSes observed, in insertion order.
func (inf *Inference) SRSList() []string {
	return inf.srsList
}

type jsonDoc struct {
	FileInfo     []geometry.FileInfo    `json:"fileInfo"`
	Schema       geometry.Schema        `json:"schema"`
	Bounds       geometry.Bounds        `json:"bounds"`
	NumPoints    uint64                 `json:"numPoints"`
	Reprojection *geometry.Reprojection `json:"reprojection,omitempty"`
	Scale        *geometry.Point        `json:"scale,omitempty"`
	Offset       *geometry.Point        `json:"offset,omitempty"`
}

// ToJSON serializes the completed inference result, suitable for reuse
// as an inference-cache document (see the Config Normalizer).
func (inf *Inference) ToJSON() ([]byte, error) {
	if !inf.done.Load() {
		return nil, ErrInferenceIncomplete
	}

	doc := jsonDoc{
		FileInfo:     inf.fileInfo,
		Schema:       inf.schema,
		Bounds:       inf.bounds,
		NumPoints:    inf.numPoints,
		Reprojection: inf.reprojection,
	}
	if inf.delta != nil {
		scale := inf.delta.Scale
		offset := inf.delta.Offset
		doc.Scale = &scale
		doc.Offset = &offset
	}

	return json.MarshalIndent(doc, "", "  ")
}
