// Package subset accommodates a configured spatial subset (a single
// partition of a parallel multi-machine build) by deriving its
// reference cube and nudging nullDepth/baseDepth up to whatever minimum
// the partition count requires. Ported from the
// `maybeAccommodateSubset` free function in
// original_source/entwine/tree/config-parser.cpp, which in turn
// delegates to entwine::Subset::Subset/split and
// entwine::Subset::minimumBaseDepth.
package subset

import (
	"github.com/golang/glog"

	"github.com/hobu-go/entwine/internal/config"
	"github.com/hobu-go/entwine/internal/geometry"
)

// Accommodate is a no-op (returns nil, nil) when cfg has no subset
// configured. Otherwise it cubeifies cfg.BoundsConforming (with
// cfg.Delta, if present) to get the subset's reference cube, builds the
// geometry.Subset, and raises cfg.NullDepth/cfg.BaseDepth in place when
// the configured (or defaulted) values fall below the partition's
// minimum - recording the pre-bump baseDepth on cfg.BaseDepthBumpedFrom
// so callers can report it, exactly as entwine logs a "bumping
// baseDepth" notice when this happens.
func Accommodate(cfg *config.Config) (*geometry.Subset, error) {
	if cfg.Subset == nil {
		return nil, nil
	}
	if cfg.BoundsConforming == nil {
		return nil, config.ErrConfigInvalid{Reason: "subset requires a resolved bounds"}
	}

	cube := cfg.BoundsConforming.Cubeify(cfg.Delta)

	sub, err := geometry.NewSubset(cube, cfg.Subset.ID, cfg.Subset.Of)
	if err != nil {
		return nil, config.ErrConfigInvalid{Reason: err.Error()}
	}

	if min := sub.MinimumNullDepth(); cfg.NullDepth < min {
		if cfg.Verbose {
			glog.Infof("subset: raising nullDepth %d -> %d to address %d partitions", cfg.NullDepth, min, cfg.Subset.Of)
		}
		cfg.NullDepth = min
	}

	if min := sub.MinimumBaseDepth(cfg.PointsPerChunk); cfg.BaseDepth < min {
		original := cfg.BaseDepth
		cfg.BaseDepthBumpedFrom = &original
		if cfg.Verbose {
			glog.Infof("subset: raising baseDepth %d -> %d to evenly divide chunks among %d partitions", original, min, cfg.Subset.Of)
		}
		cfg.BaseDepth = min
	}

	cfg.ResolvedSubset = sub
	return sub, nil
}
