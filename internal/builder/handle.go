// Package builder provides the narrow seam the planner needs into a
// build session: reopening one that already exists on disk, and
// appending newly-discovered input files to it. Full build execution
// (tree construction, point insertion, serialization) is out of scope
// for this module - nothing in original_source/ ships a builder.hpp or
// builder.cpp, so Handle is grounded only on the two call sites visible
// in entwine::ConfigParser::getBuilder: the reopen constructor
// Builder(outPath, tmpPath, numThreads) and builder->append(fileInfo).
package builder

import "github.com/hobu-go/entwine/internal/geometry"

// Handle represents a build session reopened from disk. The Resume
// Detector constructs one when it finds an existing build marker;
// nothing else in this module produces one, since a fresh build's
// Metadata is assembled directly by internal/metadata instead of
// flowing through a Handle.
type Handle struct {
	OutPath string
	TmpPath string
	Threads int

	pending []geometry.FileInfo
}

// Reopen constructs a Handle for a build session that already exists
// at outPath, mirroring Builder's reopen constructor
// Builder(outPath, tmpPath, numThreads).
func Reopen(outPath, tmpPath string, threads int) *Handle {
	return &Handle{OutPath: outPath, TmpPath: tmpPath, Threads: threads}
}

// Append records fileInfo as additional input for the reopened build,
// mirroring builder->append(fileInfo) in
// entwine::ConfigParser::getBuilder - entwine calls this only when the
// resumed config's "input" field was itself an array, since an absent
// or null "input" means continuing a build with no new files.
func (h *Handle) Append(fileInfo []geometry.FileInfo) {
	h.pending = append(h.pending, fileInfo...)
}

// Pending returns the file infos queued by Append since the handle was
// reopened.
func (h *Handle) Pending() []geometry.FileInfo {
	return h.pending
}
