package metadata

import (
	"sync"

	"github.com/hobu-go/entwine/internal/geometry"
)

// PointStats tallies per-point outcomes. A build *planner* never
// inserts points itself, so every field starts and stays zero unless a
// downstream Builder (out of scope here) calls the Add* mutators -
// they exist because Metadata's JSON shape carries this field and a
// real Builder needs somewhere to report into.
type PointStats struct {
	Inserts     uint64 `json:"inserts"`
	OutOfBounds uint64 `json:"outOfBounds"`
	Overflows   uint64 `json:"overflows"`
}

func (s *PointStats) add(other PointStats) {
	s.Inserts += other.Inserts
	s.OutOfBounds += other.OutOfBounds
	s.Overflows += other.Overflows
}

// FileStats tallies per-file outcomes, derived from each FileInfo's
// Status as it's appended to a Manifest.
type FileStats struct {
	Inserts uint64 `json:"inserts"`
	Omits   uint64 `json:"omits"`
	Errors  uint64 `json:"errors"`
}

func (s *FileStats) countStatus(status geometry.Status) {
	switch status {
	case geometry.Inserted:
		s.Inserts++
	case geometry.Omitted:
		s.Omits++
	case geometry.Error:
		s.Errors++
	}
}

// Manifest is the per-build record of every input file and the
// aggregate file/point stats derived from them. Ported from
// entwine::Manifest, narrowed to this module's scope: the original's
// "awaken" machinery (lazily paging a huge remote file-info list back
// in from storage mid-build) has no caller here, since the planner
// builds the manifest once and hands it to Metadata - there is no
// long-running Builder session to page against.
type Manifest struct {
	mu         sync.Mutex
	fileInfo   []geometry.FileInfo
	outputRoot string
	fileStats  FileStats
	pointStats PointStats
}

// NewManifest builds a Manifest from fileInfo, rooted at outputRoot
// (the output endpoint's root, stored to mirror entwine::Manifest's
// arbiter::Endpoint field; nothing in this package reads it).
func NewManifest(fileInfo []geometry.FileInfo, outputRoot string) *Manifest {
	m := &Manifest{outputRoot: outputRoot}
	m.Append(fileInfo)
	return m
}

// Append adds entries to the manifest, updating FileStats from each
// entry's current Status.
func (m *Manifest) Append(fileInfo []geometry.FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fi := range fileInfo {
		m.fileStats.countStatus(fi.Status)
	}
	m.fileInfo = append(m.fileInfo, fileInfo...)
}

// AddPointStats folds stats into the manifest's running PointStats
// total, for a real Builder to call as it processes points.
func (m *Manifest) AddPointStats(stats PointStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointStats.add(stats)
}

// Size is the number of file entries in the manifest.
func (m *Manifest) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fileInfo)
}

// Find returns the origin (index) of path, if present.
func (m *Manifest) Find(path string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, fi := range m.fileInfo {
		if fi.Path == path {
			return i, true
		}
	}
	return 0, false
}

// FileInfo returns a snapshot of the manifest's entries, in origin order.
func (m *Manifest) FileInfo() []geometry.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]geometry.FileInfo, len(m.fileInfo))
	copy(out, m.fileInfo)
	return out
}

// FileStats returns a snapshot of the aggregated per-file stats.
func (m *Manifest) FileStats() FileStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fileStats
}

// PointStats returns a snapshot of the aggregated per-point stats.
func (m *Manifest) PointStats() PointStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointStats
}

// Paths returns every entry's path, in origin order.
func (m *Manifest) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.fileInfo))
	for i, fi := range m.fileInfo {
		out[i] = fi.Path
	}
	return out
}
