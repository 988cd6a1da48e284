package storage

import (
	"fmt"
	"os"
	"strings"
)

// removeQuiet deletes path, swallowing a not-exist error since temp
// staging cleanup races with nothing else and double-removal is harmless.
func removeQuiet(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %q: %w", path, err)
	}
	return nil
}

// Dispatch picks the concrete Endpoint implementation for root by
// scheme, mirroring arbiter::Arbiter::getEndpoint's driver dispatch and
// the teacher's single-purpose tools.NewStandardFileFinder constructor.
func Dispatch(root string) (Endpoint, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: empty endpoint root")
	}
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		return NewHTTP(root), nil
	}
	return NewLocal(root), nil
}
