// Package probe extracts per-file header information (and, optionally,
// an authoritative full scan) for a single point-cloud file. Ported
// from entwine::Inference::go's per-file staging and read logic
// (original_source/entwine/util/inference.cpp), split out of the
// Inference Engine so the worker-pool orchestration in internal/inference
// stays free of staging/streaming detail.
package probe

import (
	"context"
	"fmt"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/reader"
	"github.com/hobu-go/entwine/internal/storage"
)

// rangeHeaderBytes mirrors arbiter::http::Headers' 16 KiB header probe
// window: point-cloud container formats place their header at the
// start of the file, so a small range read is enough.
const rangeHeaderBytes = 16384

// Probe extracts header information for path, optionally following up
// with an authoritative full scan when trustHeaders is false. Returns
// (nil, nil) if the file cannot be opened or its header cannot be
// parsed - this is not an error, the caller marks the file Omitted.
func Probe(
	ctx context.Context,
	ep storage.Endpoint,
	tmp storage.Endpoint,
	rdr reader.Reader,
	path string,
	reproj *geometry.Reprojection,
	trustHeaders bool,
) (*reader.Preview, error) {
	localPath, release, err := stage(ctx, ep, tmp, path)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	if localPath == "" {
		return nil, nil
	}

	preview, err := rdr.Preview(ctx, localPath, reproj)
	if err != nil {
		return nil, fmt.Errorf("probe: %q: %w", path, err)
	}
	if preview == nil {
		return nil, nil
	}

	if !trustHeaders {
		bounds := geometry.Expander
		var numPoints uint64
		ok, err := rdr.Run(ctx, func(p geometry.Point) error {
			numPoints++
			bounds = bounds.Grow(p)
			return nil
		}, localPath, reproj, nil)
		if err != nil {
			return nil, fmt.Errorf("probe: %q: streaming scan: %w", path, err)
		}
		if ok {
			preview.NumPoints = numPoints
			preview.Bounds = bounds
		}
	}

	return preview, nil
}

// stage resolves path to a local filesystem path, returning a release
// function to call once the caller is done with it (nil if nothing
// needs releasing). A remote file is staged via a 16 KiB range read
// rather than a full download, per the header-only probing contract;
// a local file is staged via the endpoint's own handle acquisition,
// which is a no-op when already local.
func stage(ctx context.Context, ep storage.Endpoint, tmp storage.Endpoint, path string) (string, func(), error) {
	if !ep.IsHTTPDerived(path) {
		handle, err := ep.GetLocalHandle(ctx, path, tmp)
		if err != nil {
			return "", nil, nil
		}
		return handle.LocalPath(), func() { handle.Release() }, nil
	}

	data, err := ep.GetBinary(ctx, path, map[string]string{
		"Range": fmt.Sprintf("bytes=0-%d", rangeHeaderBytes),
	})
	if err != nil {
		return "", nil, nil
	}

	name := storage.SanitizeName(path)
	if err := tmp.Put(ctx, name, data); err != nil {
		return "", nil, fmt.Errorf("probe: stage %q: %w", path, err)
	}

	local, ok := tmp.(*storage.Local)
	if !ok {
		return "", nil, fmt.Errorf("probe: tmp endpoint must be local to stage %q", path)
	}
	localPath := local.AbsPath(name)

	return localPath, func() { _ = local.Remove(name) }, nil
}
