// Package config applies defaults to a raw JSON configuration,
// resolves its "input" field to a concrete file list (consulting a
// cached inference document when one is given directly), and runs the
// Inference Engine when bounds, schema or a point-count hint are still
// missing. Ported from entwine::ConfigParser::getBuilder
// (original_source/entwine/tree/config-parser.cpp), split into two
// exported stages - Resolve and Finish - so a caller (pkg/planner) can
// run Resume Detection in between them: the original interleaves a
// resume check between input normalization and the inference trigger,
// returning early on a cache hit without ever running inference. A
// single monolithic Normalize (Resolve immediately followed by Finish)
// is provided for callers that don't need that short-circuit.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/inference"
	"github.com/hobu-go/entwine/internal/resolve"
	"github.com/hobu-go/entwine/internal/storage"
)

const cesiumOutSRS = "EPSG:4978"

// inferenceDoc mirrors the document inference.Inference.ToJSON emits
// (see internal/inference's jsonDoc), decoded independently here since
// the Config Normalizer is the document's only other reader.
type inferenceDoc struct {
	FileInfo     []geometry.FileInfo    `json:"fileInfo"`
	Schema       geometry.Schema        `json:"schema"`
	Bounds       geometry.Bounds        `json:"bounds"`
	NumPoints    uint64                 `json:"numPoints"`
	Reprojection *geometry.Reprojection `json:"reprojection,omitempty"`
	Scale        *geometry.Point        `json:"scale,omitempty"`
	Offset       *geometry.Point        `json:"offset,omitempty"`
}

// Normalize runs Resolve immediately followed by Finish. Most callers
// that don't care about resuming a prior build want this.
func Normalize(ctx context.Context, raw map[string]interface{}, ep storage.Endpoint) (*Config, error) {
	cfg, err := Resolve(ctx, raw, ep)
	if err != nil {
		return nil, err
	}
	if err := Finish(ctx, cfg, ep); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve applies defaults, parses every scalar/optional field, forces
// the Cesium absolute/reprojection interaction, and resolves "input"
// to a concrete FileInfo list (loading a *.entwine-inference cache
// document if that's what input names). It deliberately stops short of
// running the Inference Engine, so a caller can check for a resumable
// prior build (internal/resume) first - resuming bypasses inference
// entirely, exactly as entwine::ConfigParser::getBuilder returns early
// on a resume hit before ever constructing an Inference.
func Resolve(ctx context.Context, raw map[string]interface{}, ep storage.Endpoint) (*Config, error) {
	raw = ApplyDefaults(raw)

	cfg := &Config{}
	cfg.Output = asString(raw["output"])
	if cfg.Output == "" {
		return nil, invalid(`"output" is required`)
	}
	cfg.Tmp = asString(raw["tmp"])
	cfg.Threads = int(asUint(raw["threads"], 8))
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	cfg.TrustHeaders = asBool(raw["trustHeaders"], true)
	cfg.PrefixIDs = asBool(raw["prefixIds"], false)
	cfg.PointsPerChunk = asUint(raw["pointsPerChunk"], 262144)
	cfg.Compress = asBool(raw["compress"], true)
	if f, ok := raw["compress"].(float64); ok {
		// A numeric "compress" is true when non-zero.
		cfg.Compress = f != 0
	}
	cfg.NullDepth = asUint(raw["nullDepth"], 7)
	cfg.BaseDepth = asUint(raw["baseDepth"], 10)
	cfg.Force = asBool(raw["force"], false)
	cfg.Verbose = asBool(raw["verbose"], false)
	cfg.Absolute = asBool(raw["absolute"], false)

	cesium := asCesiumSettings(raw["formats"])
	if cesium != nil {
		cfg.CesiumSettings = cesium
		cfg.Absolute = true
	}

	reprojection, err := asReprojection(raw["reprojection"])
	if err != nil {
		return nil, err
	}
	if cesium != nil {
		if reprojection == nil {
			reprojection = &geometry.Reprojection{}
		}
		reprojection.Out = cesiumOutSRS
	}
	cfg.Reprojection = reprojection

	scale, err := asPoint3(raw["scale"], "scale")
	if err != nil {
		return nil, err
	}
	offset, err := asPoint3(raw["offset"], "offset")
	if err != nil {
		return nil, err
	}
	cfg.hasScale = scale != nil
	cfg.hasOffset = offset != nil
	if !cfg.Absolute && (scale != nil || offset != nil) {
		// A config naming only "offset" still quantizes, at scale 1 (no
		// precision loss, matching entwine::Delta's own default scale
		// when "scale" is absent from the json).
		delta := &geometry.Delta{Scale: geometry.Point{X: 1, Y: 1, Z: 1}}
		if scale != nil {
			delta.Scale = *scale
		}
		if offset != nil {
			delta.Offset = *offset
		}
		cfg.Delta = delta
	}

	cfg.BoundsConforming, err = asBounds(raw["bounds"])
	if err != nil {
		return nil, err
	}
	cfg.Schema, err = asSchema(raw["schema"])
	if err != nil {
		return nil, err
	}
	cfg.NumPointsHint = asUint(raw["numPointsHint"], 0)

	cfg.Subset, err = asSubset(raw["subset"])
	if err != nil {
		return nil, err
	}
	if cfg.Subset != nil && (cfg.Subset.ID < 1 || cfg.Subset.ID > cfg.Subset.Of) {
		return nil, invalid("subset.id (%d) must be in [1, subset.of] (%d)", cfg.Subset.ID, cfg.Subset.Of)
	}

	if err := normalizeInput(ctx, raw, ep, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Finish runs the Inference Engine, when needed, to fill in whichever
// of BoundsConforming/Schema/NumPointsHint Resolve left unset, adopting
// the rest of the inferred result (delta, transformation) per the
// "only if the config didn't already specify it" rule. A no-op when
// Resolve already has everything it needs.
func Finish(ctx context.Context, cfg *Config, ep storage.Endpoint) error {
	needsInference := cfg.BoundsConforming == nil || cfg.Schema == nil || cfg.NumPointsHint == 0
	if !needsInference {
		return nil
	}

	if cfg.Verbose {
		glog.Info("config: performing dataset inference...")
	}
	return runInference(ctx, cfg, ep)
}

// normalizeInput resolves raw["input"]: a *.entwine-inference path is
// loaded as a cached inference document and merged into cfg (only for
// fields cfg doesn't already carry); anything else is run through the
// Path Resolver.
func normalizeInput(ctx context.Context, raw map[string]interface{}, ep storage.Endpoint, cfg *Config) error {
	rawInput := raw["input"]

	if s, ok := rawInput.(string); ok && strings.EqualFold(ep.GetExtension(s), "entwine-inference") {
		data, err := ep.Get(ctx, s)
		if err != nil {
			return fmt.Errorf("config: reading inference cache %q: %w", s, err)
		}
		var doc inferenceDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return invalid("inference cache %q is not valid JSON: %v", s, err)
		}

		cfg.FileInfo = doc.FileInfo
		if cfg.Schema == nil {
			schema := doc.Schema
			cfg.Schema = &schema
		}
		if cfg.BoundsConforming == nil {
			bounds := doc.Bounds
			cfg.BoundsConforming = &bounds
		}
		if cfg.NumPointsHint == 0 {
			cfg.NumPointsHint = doc.NumPoints
		}
		if cfg.Reprojection == nil {
			cfg.Reprojection = doc.Reprojection
		}
		if !cfg.Absolute && doc.Scale != nil {
			if cfg.Delta == nil {
				cfg.Delta = &geometry.Delta{}
			}
			if !cfg.hasScale {
				cfg.Delta.Scale = *doc.Scale
			}
			if !cfg.hasOffset && doc.Offset != nil {
				cfg.Delta.Offset = *doc.Offset
			}
		}
		return nil
	}

	fileInfo, err := resolve.FileInfos(ctx, ep, rawInput, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("config: resolving input: %w", err)
	}
	cfg.FileInfo = fileInfo
	return nil
}

// runInference drives the Inference Engine and adopts whichever of
// (bounds, schema, numPointsHint, delta scale/offset, transformation)
// cfg doesn't already carry.
func runInference(ctx context.Context, cfg *Config, ep storage.Endpoint) error {
	inf := inference.New(
		cfg.FileInfo,
		cfg.Reprojection,
		cfg.TrustHeaders,
		!cfg.Absolute,
		cfg.Tmp,
		cfg.Threads,
		cfg.Verbose,
		cfg.CesiumSettings != nil,
		ep,
	)

	if err := inf.Go(ctx); err != nil {
		return err
	}

	cfg.FileInfo = inf.FileInfo()

	if !cfg.Absolute {
		if inferredDelta, err := inf.Delta(); err == nil && inferredDelta != nil {
			if cfg.Delta == nil {
				cfg.Delta = &geometry.Delta{}
			}
			if !cfg.hasScale {
				cfg.Delta.Scale = inferredDelta.Scale
			}
			if !cfg.hasOffset {
				cfg.Delta.Offset = inferredDelta.Offset
			}
		}
	}

	if cfg.BoundsConforming == nil {
		bounds, err := inf.NativeBounds()
		if err != nil {
			return err
		}
		cfg.BoundsConforming = &bounds
		if cfg.Verbose {
			glog.Infof("config: inferred bounds %v", bounds)
		}
	}

	if cfg.Schema == nil {
		inferredSchema, err := inf.Schema()
		if err != nil {
			return err
		}

		var maxPerFile, fileCount uint64
		fileCount = uint64(len(cfg.FileInfo))
		for _, fi := range cfg.FileInfo {
			if fi.NumPoints > maxPerFile {
				maxPerFile = fi.NumPoints
			}
		}

		schema := inferredSchema.Append(
			geometry.PointIDDim(maxPerFile),
			geometry.OriginIDDim(fileCount),
		)
		cfg.Schema = &schema
	}

	if cfg.NumPointsHint == 0 {
		n, err := inf.NumPoints()
		if err != nil {
			return err
		}
		cfg.NumPointsHint = n
	}

	if transform, err := inf.Transformation(); err == nil && transform != nil {
		cfg.Transformation = transform
	}

	return nil
}
