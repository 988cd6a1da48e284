package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// HTTP is a network-backed Endpoint, grounded on the direct net/http
// client usage in lumin8-convert (main.go, dataman/fetch.go) rather than
// a heavier SDK, since the contract this module needs (plain GET plus a
// Range header) doesn't warrant one.
type HTTP struct {
	root   string
	client *http.Client
}

// NewHTTP builds an HTTP endpoint rooted at root (e.g. "https://host/bucket/").
func NewHTTP(root string) *HTTP {
	return &HTTP{
		root:   root,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (h *HTTP) Root() string { return h.root }

func (h *HTTP) resolveURL(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(h.root, "/") + "/" + strings.TrimLeft(p, "/")
}

// Resolve treats HTTP paths as already concrete: arbiter-style prefix
// expansion over S3/GCS buckets is out of scope for this module, so a
// caller globbing over HTTP must have already expanded the pattern. Any
// pattern ending in "*" is rejected, including one Directorify produced
// by appending "/*" to a basename without a dot. A bare path is
// returned as-is, a single-element result.
func (h *HTTP) Resolve(ctx context.Context, pattern string, verbose bool) ([]string, error) {
	if strings.HasSuffix(pattern, "*") {
		return nil, fmt.Errorf("storage: HTTP endpoints do not support glob resolution for %q", pattern)
	}
	return []string{pattern}, nil
}

func (h *HTTP) Get(ctx context.Context, p string) ([]byte, error) {
	return h.get(ctx, p, nil)
}

func (h *HTTP) GetBinary(ctx context.Context, p string, headers map[string]string) ([]byte, error) {
	return h.get(ctx, p, headers)
}

func (h *HTTP) get(ctx context.Context, p string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.resolveURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request for %q: %w", p, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: GET %q: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("storage: GET %q: status %d", p, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (h *HTTP) Put(ctx context.Context, name string, data []byte) error {
	return fmt.Errorf("storage: HTTP endpoints are read-only (Put %q unsupported)", name)
}

// GetLocalHandle downloads the entire remote file into tmp, under a
// path-safe name (slashes and backslashes replaced with "-", matching
// the sanitization entwine::Inference::go applies via std::replace
// before staging a temp file).
func (h *HTTP) GetLocalHandle(ctx context.Context, p string, tmp Endpoint) (LocalHandle, error) {
	data, err := h.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	name := SanitizeName(p)
	if err := tmp.Put(ctx, name, data); err != nil {
		return nil, fmt.Errorf("storage: stage %q: %w", p, err)
	}

	local, ok := tmp.(*Local)
	if !ok {
		return nil, fmt.Errorf("storage: tmp endpoint must be local to stage %q", p)
	}

	return &remoteHandle{localPath: local.abs(name), tmp: local, name: name}, nil
}

func (h *HTTP) IsHTTPDerived(path string) bool { return true }

func (h *HTTP) TryGetSize(ctx context.Context, name string) (uint64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.resolveURL(name), nil)
	if err != nil {
		return 0, false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 || resp.ContentLength < 0 {
		return 0, false
	}
	return uint64(resp.ContentLength), true
}

func (h *HTTP) GetEndpoint(subpath string) (Endpoint, error) {
	return NewHTTP(strings.TrimRight(h.root, "/") + "/" + strings.TrimLeft(subpath, "/")), nil
}

func (h *HTTP) GetExtension(p string) string {
	ext := path.Ext(p)
	return strings.TrimPrefix(ext, ".")
}

func (h *HTTP) IsDirectory(p string) bool { return false }

func (h *HTTP) GetBasename(p string) string {
	u, err := url.Parse(p)
	if err != nil {
		return path.Base(p)
	}
	return path.Base(u.Path)
}

// SanitizeName replaces path separators with "-" so a source path can be
// used as a flat filename in the temp staging endpoint.
func SanitizeName(p string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-")
	return replacer.Replace(p)
}

type remoteHandle struct {
	localPath string
	tmp       *Local
	name      string
}

func (h *remoteHandle) LocalPath() string { return h.localPath }

func (h *remoteHandle) Release() error {
	return removeQuiet(h.localPath)
}
