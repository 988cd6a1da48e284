package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// Local is a filesystem-backed Endpoint rooted at a directory. Its glob
// resolution and directory-creation helpers are adapted from the
// teacher's tools.StandardFileFinder (tools/file_finder.go, now removed
// in favor of this general-purpose resolver) and tools.
// CreateDirectoryIfDoesNotExist / tools.OpenFileOrFail (tools/io.go).
type Local struct {
	root string
}

// NewLocal builds a Local endpoint rooted at root. root need not exist
// yet when used purely as a tmp staging area; Put creates missing
// directories (os.MkdirAll) as it writes.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Root() string { return l.root }

func (l *Local) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}

// AbsPath exposes abs to callers outside this package that need to
// stage a file directly onto a known Local endpoint (internal/probe's
// range-read staging path, which writes via Put then wants the real
// filesystem path to hand to a reader).
func (l *Local) AbsPath(path string) string { return l.abs(path) }

// Remove deletes the blob at path, swallowing a not-exist error.
func (l *Local) Remove(path string) error { return removeQuiet(l.abs(path)) }

// Resolve expands a pattern ending in "*" (directory glob, from
// Directorify) or a literal path into concrete file paths. A single
// trailing "*" lists only the directory's own files; a trailing "**"
// recurses into subdirectories the way the teacher's getLasFilesFromInputFolder
// walked opts.Input with filepath.Walk, but generalized to any
// point-cloud extension rather than hard-coding ".las".
func (l *Local) Resolve(ctx context.Context, pattern string, verbose bool) ([]string, error) {
	recursive := strings.HasSuffix(pattern, "**")
	glob := strings.TrimSuffix(pattern, "*")
	glob = strings.TrimSuffix(glob, "*")

	if !recursive && !strings.HasSuffix(pattern, "*") {
		// Single concrete file.
		abs := l.abs(pattern)
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("storage: resolve %q: %w", pattern, err)
		}
		return []string{pattern}, nil
	}

	dir := l.abs(glob)
	var out []string
	walk := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		out = append(out, path)
		return nil
	}

	if err := filepath.Walk(dir, walk); err != nil {
		return nil, fmt.Errorf("storage: resolve %q: %w", pattern, err)
	}

	sort.Strings(out)
	if verbose {
		glog.Infof("resolved %d paths under %q", len(out), dir)
	}
	return out, nil
}

func (l *Local) Get(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.abs(path))
}

// GetBinary ignores headers for Local since there is no network range
// semantics to honor; it simply reads the whole file. Header-only
// probing relies on the reader stopping once it has what it needs.
func (l *Local) GetBinary(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return l.Get(ctx, path)
}

func (l *Local) Put(ctx context.Context, name string, data []byte) error {
	dst := l.abs(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return fmt.Errorf("storage: mkdir for %q: %w", name, err)
	}
	return os.WriteFile(dst, data, 0o666)
}

func (l *Local) GetLocalHandle(ctx context.Context, path string, tmp Endpoint) (LocalHandle, error) {
	return &localHandle{path: l.abs(path)}, nil
}

func (l *Local) IsHTTPDerived(path string) bool { return false }

func (l *Local) TryGetSize(ctx context.Context, name string) (uint64, bool) {
	info, err := os.Stat(l.abs(name))
	if err != nil {
		return 0, false
	}
	return uint64(info.Size()), true
}

func (l *Local) GetEndpoint(subpath string) (Endpoint, error) {
	return NewLocal(filepath.Join(l.root, subpath)), nil
}

func (l *Local) GetExtension(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimPrefix(ext, ".")
}

func (l *Local) IsDirectory(path string) bool {
	info, err := os.Stat(l.abs(path))
	return err == nil && info.IsDir()
}

func (l *Local) GetBasename(path string) string {
	return filepath.Base(path)
}

// localHandle is already-local, so Release is a no-op; it exists purely
// to satisfy LocalHandle's interface uniformly with the HTTP adapter,
// which does stage a temp file.
type localHandle struct {
	path string
}

func (h *localHandle) LocalPath() string { return h.path }
func (h *localHandle) Release() error    { return nil }
