package config

import "github.com/hobu-go/entwine/internal/geometry"

// SubsetSpec is the parsed form of the config "subset" node.
type SubsetSpec struct {
	ID uint64
	Of uint64
}

// Config is the typed, normalized view of a raw JSON configuration,
// materialized by Normalize. Every field has already had its default
// applied and, where the field is a prerequisite for building
// (BoundsConforming, Schema, NumPointsHint), inference has already run
// if the config didn't supply it directly.
type Config struct {
	Output string
	Tmp    string

	Threads        int
	TrustHeaders   bool
	PrefixIDs      bool
	PointsPerChunk uint64
	Compress       bool
	NullDepth      uint64
	BaseDepth      uint64
	Absolute       bool
	Force          bool
	Verbose        bool

	Reprojection   *geometry.Reprojection
	Subset         *SubsetSpec
	CesiumSettings map[string]interface{}

	FileInfo         []geometry.FileInfo
	BoundsConforming *geometry.Bounds
	Schema           *geometry.Schema
	NumPointsHint    uint64
	Delta            *geometry.Delta
	Transformation   []float64

	// ResolvedSubset and BaseDepthBumpedFrom are filled in by
	// subset.Accommodate, not by Normalize itself - the Subset
	// Accommodator runs after Normalize, once BoundsConforming/Delta
	// are final. BaseDepthBumpedFrom is nil unless BaseDepth had to be
	// raised above what the config (or its defaults) specified.
	ResolvedSubset      *geometry.Subset
	BaseDepthBumpedFrom *uint64

	// hasScale/hasOffset record whether the raw config (as opposed to
	// an adopted inference-cache or Inference Engine result) supplied
	// "scale"/"offset" directly, so Finish knows which Delta fields it
	// is and isn't allowed to overwrite. Set by Resolve, read by
	// Finish; not meaningful outside this package.
	hasScale  bool
	hasOffset bool
}
