package storage

import "context"

// Endpoint is the storage abstraction consumed by the Path Resolver, File
// Probe and Inference Engine. The core planner never talks to the
// filesystem or network directly; it only ever talks to an Endpoint.
// Two concrete adapters are provided: Local (package-local files) and
// HTTP (range-read capable remote files).
type Endpoint interface {
	// Resolve expands a glob-like pattern into concrete paths.
	Resolve(ctx context.Context, pattern string, verbose bool) ([]string, error)

	// Get reads the entire blob at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetBinary reads path with the given request headers (used for
	// HTTP range reads during inference's header-only probing).
	GetBinary(ctx context.Context, path string, headers map[string]string) ([]byte, error)

	// Put writes data under name, relative to this endpoint's root.
	Put(ctx context.Context, name string, data []byte) error

	// GetLocalHandle stages path to local disk (if it isn't already
	// local) using tmp as scratch space, returning a handle whose
	// Release must be called once the caller is done with it.
	GetLocalHandle(ctx context.Context, path string, tmp Endpoint) (LocalHandle, error)

	// IsHTTPDerived reports whether path requires network access.
	IsHTTPDerived(path string) bool

	// TryGetSize reports the byte size of name if it exists.
	TryGetSize(ctx context.Context, name string) (size uint64, ok bool)

	// GetEndpoint returns a new Endpoint rooted at subpath relative to
	// this one (e.g. to get a "tmp" sub-endpoint from an output root).
	GetEndpoint(subpath string) (Endpoint, error)

	// GetExtension returns the extension of path, without the dot.
	GetExtension(path string) string

	// IsDirectory reports whether path refers to a directory.
	IsDirectory(path string) bool

	// GetBasename returns the final path element of path.
	GetBasename(path string) string

	// Root returns the endpoint's root path/URL, used for logging and
	// for building the build marker's full path.
	Root() string
}

// LocalHandle is a released-on-Release local filesystem staging of a
// (possibly remote) file.
type LocalHandle interface {
	LocalPath() string
	Release() error
}
