// Package resolve expands user-supplied path strings (files,
// directories, globs) into a flat, ordered list of concrete file paths
// against a storage.Endpoint. Ported from entwine::ConfigParser::
// directorify and the path-expansion loop in
// entwine::ConfigParser::normalizeInput.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/storage"
)

// Directorify normalizes a single input path: if it already ends in
// "*", it's left alone; if it names a directory on ep, "*" is appended;
// if its basename has no "." (so it looks like a directory name rather
// than a file), "/*" is appended; otherwise it's treated as a single
// concrete file and left unchanged.
func Directorify(ep storage.Endpoint, s string) string {
	if s == "" || strings.HasSuffix(s, "*") {
		return s
	}

	if ep.IsDirectory(s) {
		return s + "*"
	}

	basename := ep.GetBasename(s)
	if !strings.Contains(basename, ".") {
		return s + "/*"
	}

	return s
}

// Paths expands a single string or a slice of strings into a flat,
// ordered list of concrete file paths. Order is preserved because later
// pipeline stages (notably OriginId assignment) index files by position.
func Paths(ctx context.Context, ep storage.Endpoint, input interface{}, verbose bool) ([]string, error) {
	var raw []string

	switch v := input.(type) {
	case nil:
		return nil, nil
	case string:
		if v != "" {
			raw = []string{v}
		}
	case []string:
		raw = v
	case []interface{}:
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("resolve: input array elements must be strings, got %T", elem)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("resolve: unsupported input type %T", v)
	}

	var out []string
	for _, s := range raw {
		expanded := Directorify(ep, s)
		resolved, err := ep.Resolve(ctx, expanded, verbose)
		if err != nil {
			return nil, fmt.Errorf("resolve: %q: %w", s, err)
		}
		if verbose {
			glog.Infof("resolve: %q -> %d paths", s, len(resolved))
		}
		out = append(out, resolved...)
	}

	return out, nil
}

// FileInfos is Paths followed by wrapping each resolved path in a
// path-only, Outstanding geometry.FileInfo, the shape the Inference
// Engine expects as its starting point.
func FileInfos(ctx context.Context, ep storage.Endpoint, input interface{}, verbose bool) ([]geometry.FileInfo, error) {
	paths, err := Paths(ctx, ep, input, verbose)
	if err != nil {
		return nil, err
	}

	out := make([]geometry.FileInfo, len(paths))
	for i, p := range paths {
		out[i] = geometry.NewFileInfo(p)
	}
	return out, nil
}
