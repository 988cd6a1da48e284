package metadata

import (
	"testing"

	"github.com/hobu-go/entwine/internal/geometry"
)

func TestNewManifestCountsStatus(t *testing.T) {
	fileInfo := []geometry.FileInfo{
		{Path: "a.ply", Status: geometry.Inserted},
		{Path: "b.ply", Status: geometry.Omitted},
		{Path: "c.ply", Status: geometry.Error},
	}
	m := NewManifest(fileInfo, "out")

	stats := m.FileStats()
	if stats.Inserts != 1 || stats.Omits != 1 || stats.Errors != 1 {
		t.Fatalf("FileStats = %+v, want one of each", stats)
	}
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
}

func TestManifestFind(t *testing.T) {
	m := NewManifest([]geometry.FileInfo{{Path: "a.ply"}, {Path: "b.ply"}}, "out")
	origin, ok := m.Find("b.ply")
	if !ok || origin != 1 {
		t.Fatalf("Find(%q) = (%d, %v), want (1, true)", "b.ply", origin, ok)
	}
	if _, ok := m.Find("missing.ply"); ok {
		t.Fatal("Find(missing.ply) should report not found")
	}
}

func TestManifestAppendAccumulatesStats(t *testing.T) {
	m := NewManifest([]geometry.FileInfo{{Path: "a.ply", Status: geometry.Inserted}}, "out")
	m.Append([]geometry.FileInfo{{Path: "b.ply", Status: geometry.Inserted}})

	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", m.Size())
	}
	if m.FileStats().Inserts != 2 {
		t.Fatalf("FileStats().Inserts = %d, want 2", m.FileStats().Inserts)
	}
}

func TestManifestPaths(t *testing.T) {
	m := NewManifest([]geometry.FileInfo{{Path: "a.ply"}, {Path: "b.ply"}}, "out")
	paths := m.Paths()
	if len(paths) != 2 || paths[0] != "a.ply" || paths[1] != "b.ply" {
		t.Fatalf("Paths() = %v", paths)
	}
}
