package geometry

import "math"

// HierarchyCompression selects how the downstream Builder compresses the
// tree's hierarchy file.
type HierarchyCompression string

const (
	HierarchyCompressionNone HierarchyCompression = "None"
	HierarchyCompressionLzma HierarchyCompression = "Lzma"
)

// Structure carries the tree-shape parameters a Metadata is built from.
// HierarchyStructure is a second, derived Structure used by the Builder's
// hierarchy index; entwine derives it from the base Structure and an
// optional Subset (see Hierarchy.structure in the original C++), which
// this port exposes as DeriveHierarchyStructure.
type Structure struct {
	NullDepth      uint64
	BaseDepth      uint64
	PointsPerChunk uint64
}

// DeriveHierarchyStructure builds the Structure used for the hierarchy
// index: it shares PointsPerChunk and NullDepth with the base Structure,
// but its BaseDepth is clamped down to NullDepth since the hierarchy
// index only needs to resolve chunk existence, not full point storage
// depth. When a Subset is present, the hierarchy structure's NullDepth
// is raised to the subset's minimum so every subset agrees on where the
// shared hierarchy root sits.
func DeriveHierarchyStructure(s Structure, subset *Subset) Structure {
	h := Structure{
		NullDepth:      s.NullDepth,
		BaseDepth:      s.NullDepth,
		PointsPerChunk: s.PointsPerChunk,
	}
	if subset != nil {
		if min := subset.MinimumNullDepth(); min > h.NullDepth {
			h.NullDepth = min
			h.BaseDepth = min
		}
	}
	return h
}

// LogN is the integer log base n of v, rounded down, matching
// entwine::ChunkInfo::logN used by Subset::minimumBaseDepth.
func LogN(v, n uint64) uint64 {
	if v <= 1 || n <= 1 {
		return 0
	}
	return uint64(math.Log(float64(v)) / math.Log(float64(n)))
}
