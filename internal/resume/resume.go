// Package resume detects whether a build has already started at a
// config's output location and, if so, reopens it instead of letting
// the planner fall through to inference and metadata assembly. Ported
// from entwine::ConfigParser::tryGetExisting and the resume branch of
// ConfigParser::getBuilder (original_source/entwine/tree/
// config-parser.cpp): both run immediately after input normalization,
// before the cesium/delta/inference/subset logic ever executes, and
// short-circuit the whole rest of the function on a marker hit.
package resume

import (
	"context"
	"fmt"

	"github.com/hobu-go/entwine/internal/builder"
	"github.com/hobu-go/entwine/internal/config"
	"github.com/hobu-go/entwine/internal/storage"
)

// markerName is "entwine", optionally suffixed with "-<subsetId>" when
// the config names a subset, matching tryGetExisting's postfix.
func markerName(cfg *config.Config) string {
	if cfg.Subset != nil {
		return fmt.Sprintf("entwine-%d", cfg.Subset.ID)
	}
	return "entwine"
}

// Detect checks outEp for a build marker matching cfg's subset (if
// any). cfg.Force bypasses the check entirely, matching
// getBuilder's "if (!json["force"].asBool())" guard.
//
// hadArrayInput should be true when the raw config's "input" field was
// a JSON array, not merely present - entwine only appends the resolved
// fileInfo to a resumed build when the caller supplied a concrete input
// array; an absent or null "input" means "continue the previous build
// with no additions" and the resolved file list (which would be empty
// in that case) is never appended.
//
// On a hit, Detect returns the reopened *builder.Handle and true; the
// caller must treat this as the end of the pipeline for this config -
// no config.Finish, subset.Accommodate or metadata.Assemble should run.
// On a miss, it returns (nil, false, nil) and the caller proceeds
// through the rest of the pipeline normally.
func Detect(ctx context.Context, cfg *config.Config, hadArrayInput bool, outEp storage.Endpoint) (*builder.Handle, bool, error) {
	if cfg.Force {
		return nil, false, nil
	}

	if _, ok := outEp.TryGetSize(ctx, markerName(cfg)); !ok {
		return nil, false, nil
	}

	handle := builder.Reopen(cfg.Output, cfg.Tmp, cfg.Threads)
	if hadArrayInput {
		handle.Append(cfg.FileInfo)
	}

	return handle, true, nil
}
