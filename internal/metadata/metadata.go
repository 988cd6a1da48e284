// Package metadata assembles the immutable build-metadata document a
// planner run produces: the final cubeified bounds, schema, tree
// structure, manifest and every optional collaborator (reprojection,
// subset, delta, Cesium transformation/settings) gathered by the rest
// of the pipeline. Ported from entwine::Metadata
// (original_source/entwine/types/metadata.hpp).
package metadata

import (
	"encoding/json"
	"sync"

	"github.com/hobu-go/entwine/internal/geometry"
)

// boundsEpsilon matches the magnitude of entwine's own bounds-epsilon
// usage, used to pad Bounds so points sitting exactly on a boundary
// aren't lost to floating-point comparison aliasing.
const boundsEpsilon = 1e-6

// CurrentVersion is the metadata document's format version, serialized
// alongside every assembled Metadata the way entwine's Version class
// stamps its own toJson output.
const CurrentVersion = "1.0.0"

// AssembleParams carries every input Assemble needs. Manifest is
// required; every pointer/map field is optional and left nil when the
// corresponding collaborator wasn't configured.
type AssembleParams struct {
	BoundsConforming     geometry.Bounds
	Schema               geometry.Schema
	Structure            geometry.Structure
	HierarchyStructure   geometry.Structure
	Manifest             *Manifest
	TrustHeaders         bool
	Compress             bool
	HierarchyCompression geometry.HierarchyCompression
	Reprojection         *geometry.Reprojection
	Subset               *geometry.Subset
	Delta                *geometry.Delta
	Transformation       []float64
	CesiumSettings       map[string]interface{}
}

// Metadata is the immutable (modulo its three narrow mutators) record
// of everything downstream tree construction needs to know about a
// build. Friend-class cross-component mutation in the original
// (Builder/Sequence reaching into Metadata's private setters) is
// replaced by AppendManifestEntry/RecordError/SetSRS, the only exported
// ways to change state after Assemble returns.
type Metadata struct {
	boundsConforming geometry.Bounds
	boundsEpsilon    geometry.Bounds
	bounds           geometry.Bounds

	schema               geometry.Schema
	structure            geometry.Structure
	hierarchyStructure   geometry.Structure
	manifest             *Manifest
	trustHeaders         bool
	compress             bool
	hierarchyCompression geometry.HierarchyCompression
	reprojection         *geometry.Reprojection
	subset               *geometry.Subset
	delta                *geometry.Delta
	transformation       []float64
	cesiumSettings       map[string]interface{}
	version              string

	mu     sync.Mutex
	srs    string
	errors []string
}

// Assemble builds an immutable Metadata from p. Bounds is derived as
// the cubeified form of BoundsConforming (with Delta, if present);
// when Delta is present, BoundsConforming and Bounds are stored
// deltified. BoundsEpsilon is Bounds expanded by boundsEpsilon.
func Assemble(p AssembleParams) (*Metadata, error) {
	if p.Manifest == nil {
		return nil, ErrMetadataInvalid{Reason: "manifest is required"}
	}

	conforming := p.BoundsConforming
	bounds := p.BoundsConforming.Cubeify(p.Delta)
	if p.Delta != nil {
		conforming = conforming.Deltify(p.Delta)
		bounds = bounds.Deltify(p.Delta)
	}

	return &Metadata{
		boundsConforming:     conforming,
		boundsEpsilon:        bounds.Expand(boundsEpsilon),
		bounds:               bounds,
		schema:               p.Schema,
		structure:            p.Structure,
		hierarchyStructure:   p.HierarchyStructure,
		manifest:             p.Manifest,
		trustHeaders:         p.TrustHeaders,
		compress:             p.Compress,
		hierarchyCompression: p.HierarchyCompression,
		reprojection:         p.Reprojection,
		subset:               p.Subset,
		delta:                p.Delta,
		transformation:       p.Transformation,
		cesiumSettings:       p.CesiumSettings,
		version:              CurrentVersion,
	}, nil
}

func (m *Metadata) Bounds() geometry.Bounds           { return m.bounds }
func (m *Metadata) BoundsConforming() geometry.Bounds { return m.boundsConforming }
func (m *Metadata) BoundsEpsilon() geometry.Bounds    { return m.boundsEpsilon }

// BoundsNative undoes Delta quantization on Bounds, returning it in
// native floating-point coordinates; a no-op when no Delta is present.
func (m *Metadata) BoundsNative() geometry.Bounds {
	return m.bounds.Undeltify(m.delta)
}

// BoundsNativeConforming is BoundsNative for BoundsConforming instead
// of the cubeified Bounds.
func (m *Metadata) BoundsNativeConforming() geometry.Bounds {
	return m.boundsConforming.Undeltify(m.delta)
}

func (m *Metadata) Schema() geometry.Schema                             { return m.schema }
func (m *Metadata) Structure() geometry.Structure                       { return m.structure }
func (m *Metadata) HierarchyStructure() geometry.Structure              { return m.hierarchyStructure }
func (m *Metadata) Manifest() *Manifest                                 { return m.manifest }
func (m *Metadata) TrustHeaders() bool                                  { return m.trustHeaders }
func (m *Metadata) Compress() bool                                      { return m.compress }
func (m *Metadata) HierarchyCompression() geometry.HierarchyCompression { return m.hierarchyCompression }
func (m *Metadata) Reprojection() *geometry.Reprojection                { return m.reprojection }
func (m *Metadata) Subset() *geometry.Subset                            { return m.subset }
func (m *Metadata) Delta() *geometry.Delta                              { return m.delta }
func (m *Metadata) Transformation() []float64                           { return m.transformation }
func (m *Metadata) CesiumSettings() map[string]interface{}              { return m.cesiumSettings }
func (m *Metadata) Version() string                                     { return m.version }

func (m *Metadata) SRS() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.srs
}

func (m *Metadata) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.errors))
	copy(out, m.errors)
	return out
}

// AppendManifestEntry adds fi to the manifest, the one mutation a
// Resume Detector needs to perform on an already-assembled Metadata
// when continuing a build with additional input files.
func (m *Metadata) AppendManifestEntry(fi geometry.FileInfo) {
	m.manifest.Append([]geometry.FileInfo{fi})
}

// RecordError appends msg to the error log, matching
// entwine::Metadata::errors()'s mutable accessor.
func (m *Metadata) RecordError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

// SetSRS records the dataset's spatial reference system once it's
// known (typically the first non-empty SRS the Inference Engine saw).
func (m *Metadata) SetSRS(srs string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.srs = srs
}

type jsonDoc struct {
	BoundsConforming     geometry.Bounds               `json:"boundsConforming"`
	Bounds               geometry.Bounds               `json:"bounds"`
	BoundsEpsilon        geometry.Bounds               `json:"boundsEpsilon"`
	Schema               geometry.Schema               `json:"schema"`
	Structure            geometry.Structure            `json:"structure"`
	HierarchyStructure   geometry.Structure            `json:"hierarchyStructure"`
	FileStats            FileStats                     `json:"fileStats"`
	PointStats           PointStats                    `json:"pointStats"`
	TrustHeaders         bool                          `json:"trustHeaders"`
	Compress             bool                          `json:"compress"`
	HierarchyCompression geometry.HierarchyCompression `json:"hierarchyCompression"`
	Reprojection         *geometry.Reprojection        `json:"reprojection,omitempty"`
	Delta                *geometry.Delta               `json:"delta,omitempty"`
	Transformation       []float64                     `json:"transformation,omitempty"`
	CesiumSettings       map[string]interface{}        `json:"cesium,omitempty"`
	Version              string                        `json:"version"`
	SRS                  string                        `json:"srs,omitempty"`
	Errors               []string                      `json:"errors,omitempty"`
}

// ToJSON serializes the full metadata document, matching the field set
// of entwine::Metadata::toJson (minus the subset node, which is
// reconstructible from config and not duplicated here).
func (m *Metadata) ToJSON() ([]byte, error) {
	doc := jsonDoc{
		BoundsConforming:     m.boundsConforming,
		Bounds:               m.bounds,
		BoundsEpsilon:        m.boundsEpsilon,
		Schema:               m.schema,
		Structure:            m.structure,
		HierarchyStructure:   m.hierarchyStructure,
		FileStats:            m.manifest.FileStats(),
		PointStats:           m.manifest.PointStats(),
		TrustHeaders:         m.trustHeaders,
		Compress:             m.compress,
		HierarchyCompression: m.hierarchyCompression,
		Reprojection:         m.reprojection,
		Delta:                m.delta,
		Transformation:       m.transformation,
		CesiumSettings:       m.cesiumSettings,
		Version:              m.version,
		SRS:                  m.SRS(),
		Errors:               m.Errors(),
	}
	return json.MarshalIndent(doc, "", "  ")
}
