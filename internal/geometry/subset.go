package geometry

import (
	"fmt"
	"math"
)

// Subset identifies which spatial partition of a parallel multi-build
// this build instance covers. ID is 1-based on the wire (matching the
// JSON `subset.id` key) but stored 0-based internally, mirroring
// entwine::Subset's m_id.
type Subset struct {
	id  uint64 // 0-based
	of  uint64
	sub Bounds

	minimumNullDepth uint64
}

// NewSubset builds a Subset from the root conforming bounds (already
// cubeified) and the 1-based id/of pair. of must be a power of two and
// id must be in [1, of]. Ported from entwine::Subset::Subset /
// entwine::Subset::split; only in X/Y is the bounds split (Z is left
// whole) since point-cloud data tends not to be uniformly dense through
// the full Z range.
func NewSubset(bounds Bounds, id, of uint64) (*Subset, error) {
	if id == 0 {
		return nil, fmt.Errorf("geometry: subset ids are 1-based")
	}
	if id > of {
		return nil, fmt.Errorf("geometry: invalid subset id %d: too large for of=%d", id, of)
	}
	if of <= 1 {
		return nil, fmt.Errorf("geometry: invalid subset range: of=%d", of)
	}

	log := uint64(math.Log2(float64(of)))
	if uint64(math.Pow(2, float64(log))) != of {
		return nil, fmt.Errorf("geometry: subset range must be a power of 2, got %d", of)
	}

	s := &Subset{id: id - 1, of: of, minimumNullDepth: 1}
	s.split(bounds)
	return s, nil
}

// ID returns the 1-based subset id.
func (s *Subset) ID() uint64 { return s.id + 1 }

// Of returns the total number of subsets this build is partitioned into.
func (s *Subset) Of() uint64 { return s.of }

// Bounds returns the bounding box of this subset's assigned quadrants.
func (s *Subset) Bounds() Bounds { return s.sub }

// MinimumNullDepth is the smallest nullDepth that gives the tree enough
// quadrant levels to address all `of` partitions, splitting only in X/Y
// (a factor of 4 per depth level).
func (s *Subset) MinimumNullDepth() uint64 {
	return s.minimumNullDepth
}

// MinimumBaseDepth is the smallest baseDepth such that the chunks at
// that depth can be evenly divided among `of` partitions, given a
// nominal per-chunk point budget. Ported from
// entwine::Subset::minimumBaseDepth.
func (s *Subset) MinimumBaseDepth(pointsPerChunk uint64) uint64 {
	nominalChunkDepth := LogN(pointsPerChunk, 4)
	min := nominalChunkDepth

	chunksAtDepth := uint64(1)
	for chunksAtDepth < s.of {
		min++
		chunksAtDepth *= 4
	}

	return min
}

// split computes m_minimumNullDepth and this subset's assigned bounding
// quadrant, exactly as entwine::Subset::split.
func (s *Subset) split(bounds Bounds) {
	const dimensions = 2
	const factor = uint64(4)

	cap := factor
	for cap < s.of {
		s.minimumNullDepth++
		cap *= factor
	}

	boxes := cap / s.of
	startOffset := s.id * boxes

	iterations := LogN(cap, factor)
	const mask = uint64(0x3)

	set := false
	for curID := startOffset; curID < startOffset+boxes; curID++ {
		current := bounds
		for i := int64(iterations) - 1; i >= 0; i-- {
			shift := uint64(i) * dimensions
			dir := (curID >> shift) & mask
			current = quadrant(current, dir)
		}

		if !set {
			s.sub = current
			set = true
		} else {
			s.sub = s.sub.GrowBounds(current)
		}
	}
}

// quadrant returns one of the four X/Y quadrants of b selected by dir
// (0=SW, 1=SE, 2=NW, 3=NE in the low two bits: bit0=east, bit1=north),
// leaving the Z extent untouched. Mirrors entwine::Bounds::go for the
// four horizontal Dir values entwine::Subset::split can select.
func quadrant(b Bounds, dir uint64) Bounds {
	mid := b.Mid()
	out := b

	if dir&0x1 == 0 {
		out.Max.X = mid.X
	} else {
		out.Min.X = mid.X
	}

	if dir&0x2 == 0 {
		out.Max.Y = mid.Y
	} else {
		out.Min.Y = mid.Y
	}

	return out
}
