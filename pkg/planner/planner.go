// Package planner ties the Config Normalizer, Resume Detector, Subset
// Accommodator and Metadata Assembler into the single entry point a CLI
// or other caller drives: given a raw JSON configuration and an output
// storage.Endpoint, produce either a reopened build Handle (resume) or
// a freshly assembled Metadata (fresh build). Ported from
// entwine::ConfigParser::getBuilder
// (original_source/entwine/tree/config-parser.cpp), which this package
// mirrors stage-by-stage rather than reproducing as one function.
package planner

import (
	"context"
	"fmt"

	"github.com/hobu-go/entwine/internal/builder"
	"github.com/hobu-go/entwine/internal/config"
	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/metadata"
	"github.com/hobu-go/entwine/internal/resume"
	"github.com/hobu-go/entwine/internal/storage"
	"github.com/hobu-go/entwine/internal/subset"
)

// Result is what a single Plan call produces: either Handle is set
// (the config resumed a prior build, and nothing past Resume Detection
// ran) or Metadata is set (a fresh build was planned in full).
type Result struct {
	Config *config.Config

	Resumed bool
	Handle  *builder.Handle

	Metadata *metadata.Metadata
}

// Plan runs the full pipeline for one configuration. ep is the root
// endpoint: input paths are resolved against it, and the output
// endpoint is derived from it with ep.GetEndpoint(cfg.Output).
func Plan(ctx context.Context, raw map[string]interface{}, ep storage.Endpoint) (*Result, error) {
	cfg, err := config.Resolve(ctx, raw, ep)
	if err != nil {
		return nil, err
	}

	outEp, err := ep.GetEndpoint(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("planner: resolving output endpoint: %w", err)
	}

	handle, resumed, err := resume.Detect(ctx, cfg, hasArrayInput(raw["input"]), outEp)
	if err != nil {
		return nil, err
	}
	if resumed {
		return &Result{Config: cfg, Resumed: true, Handle: handle}, nil
	}

	if err := config.Finish(ctx, cfg, ep); err != nil {
		return nil, err
	}

	resolvedSubset, err := subset.Accommodate(cfg)
	if err != nil {
		return nil, err
	}

	structure := geometry.Structure{
		NullDepth:      cfg.NullDepth,
		BaseDepth:      cfg.BaseDepth,
		PointsPerChunk: cfg.PointsPerChunk,
	}
	hierarchyStructure := geometry.DeriveHierarchyStructure(structure, resolvedSubset)

	hierarchyCompression := geometry.HierarchyCompressionNone
	if cfg.Compress {
		hierarchyCompression = geometry.HierarchyCompressionLzma
	}

	if cfg.BoundsConforming == nil || cfg.Schema == nil {
		return nil, fmt.Errorf("planner: cannot assemble metadata without bounds and schema")
	}

	md, err := metadata.Assemble(metadata.AssembleParams{
		BoundsConforming:     *cfg.BoundsConforming,
		Schema:               *cfg.Schema,
		Structure:            structure,
		HierarchyStructure:   hierarchyStructure,
		Manifest:             metadata.NewManifest(cfg.FileInfo, cfg.Output),
		TrustHeaders:         cfg.TrustHeaders,
		Compress:             cfg.Compress,
		HierarchyCompression: hierarchyCompression,
		Reprojection:         cfg.Reprojection,
		Subset:               resolvedSubset,
		Delta:                cfg.Delta,
		Transformation:       cfg.Transformation,
		CesiumSettings:       cfg.CesiumSettings,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Metadata: md}, nil
}

// hasArrayInput reports whether v (the raw, pre-default "input" value)
// was given as a JSON array, the one case where a resumed build's
// FileInfo is appended rather than discarded - see internal/resume.
func hasArrayInput(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []string:
		return true
	default:
		return false
	}
}
