package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/storage"
)

const plyFixture = `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
end_header
%g %g %g
%g %g %g
`

func writePly(t *testing.T, dir, name string, p1, p2 geometry.Point) {
	t.Helper()
	content := fmt.Sprintf(plyFixture, p1.X, p1.Y, p1.Z, p2.X, p2.Y, p2.Z)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Scenario 1: fresh build, trusted headers, two local files.
func TestPlanFreshBuildTwoFiles(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply", geometry.Point{X: 0, Y: 0, Z: 0}, geometry.Point{X: 10, Y: 10, Z: 10})
	writePly(t, dir, "b.ply", geometry.Point{X: 0, Y: 0, Z: 0}, geometry.Point{X: 10, Y: 10, Z: 10})

	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output": "out",
		"input":  []interface{}{"a.ply", "b.ply"},
	}

	result, err := Plan(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if result.Resumed || result.Metadata == nil {
		t.Fatalf("expected a fresh build, got %+v", result)
	}
	if result.Config.NumPointsHint != 4 {
		t.Fatalf("NumPointsHint = %d, want 4", result.Config.NumPointsHint)
	}
	want := geometry.Bounds{Min: geometry.Point{X: 0, Y: 0, Z: 0}, Max: geometry.Point{X: 10, Y: 10, Z: 10}}
	if result.Metadata.BoundsNativeConforming() != want {
		t.Fatalf("BoundsNativeConforming() = %v, want %v", result.Metadata.BoundsNativeConforming(), want)
	}
	dims := result.Metadata.Schema().Dims
	last, secondLast := dims[len(dims)-1], dims[len(dims)-2]
	if secondLast.Name != "PointId" || last.Name != "OriginId" {
		t.Fatalf("expected schema to end in PointId, OriginId, got %v", dims)
	}
}

// Scenario 2: resume, no new input, an existing build marker.
func TestPlanResumesExistingBuild(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "entwine"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output": "out",
		"input":  []interface{}{},
		"force":  false,
	}

	result, err := Plan(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !result.Resumed || result.Handle == nil {
		t.Fatalf("expected a resumed build, got %+v", result)
	}
	if result.Metadata != nil {
		t.Fatal("expected no Metadata on a resumed build")
	}
}

// Scenario 3: subset depth bump.
func TestPlanSubsetBumpsDepth(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output":         "out",
		"input":          []interface{}{},
		"bounds":         []interface{}{-500.0, -500.0, -500.0, 500.0, 500.0, 500.0},
		"numPointsHint":  float64(1),
		"schema":         []interface{}{map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)}},
		"subset":         map[string]interface{}{"id": float64(1), "of": float64(64)},
		"nullDepth":      float64(5),
		"baseDepth":      float64(8),
		"pointsPerChunk": float64(262144),
	}

	result, err := Plan(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if result.Config.NullDepth < result.Config.ResolvedSubset.MinimumNullDepth() {
		t.Fatalf("NullDepth = %d, below subset minimum %d", result.Config.NullDepth, result.Config.ResolvedSubset.MinimumNullDepth())
	}
	if result.Config.BaseDepthBumpedFrom == nil {
		t.Fatal("expected BaseDepthBumpedFrom to be set")
	}
}

// Scenario 4: inference-file input, no probing.
func TestPlanLoadsInferenceCacheWithoutProbing(t *testing.T) {
	dir := t.TempDir()
	cache := `{
		"fileInfo": [{"path": "a.las", "numPoints": 500, "bounds": {"Min": {"X":0,"Y":0,"Z":0}, "Max": {"X":1,"Y":1,"Z":1}}}],
		"schema": {"Dims": [{"name": "X", "type": "floating", "size": 8}]},
		"bounds": {"Min": {"X":0,"Y":0,"Z":0}, "Max": {"X":1,"Y":1,"Z":1}},
		"numPoints": 500
	}`
	if err := os.WriteFile(filepath.Join(dir, "prior.entwine-inference"), []byte(cache), 0o644); err != nil {
		t.Fatal(err)
	}

	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output": "out",
		"input":  "prior.entwine-inference",
	}

	result, err := Plan(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if result.Metadata == nil {
		t.Fatal("expected a fresh build from the cached inference document")
	}
	if result.Config.NumPointsHint != 500 {
		t.Fatalf("NumPointsHint = %d, want 500", result.Config.NumPointsHint)
	}
	if len(result.Config.FileInfo) != 1 || result.Config.FileInfo[0].Path != "a.las" {
		t.Fatalf("FileInfo = %v, want the cached entry unchanged", result.Config.FileInfo)
	}
}

// Scenario 5: Cesium settings force absolute + EPSG:4978 + a transform.
func TestPlanCesiumForcesAbsoluteAndTransforms(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "earth.ply",
		geometry.Point{X: 6378000, Y: 0, Z: 0},
		geometry.Point{X: 6378100, Y: 100, Z: 100})

	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output":  "out",
		"input":   []interface{}{"earth.ply"},
		"formats": map[string]interface{}{"cesium": map[string]interface{}{}},
	}

	result, err := Plan(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !result.Config.Absolute {
		t.Fatal("expected Absolute to be forced true by cesium settings")
	}
	if result.Config.Reprojection == nil || result.Config.Reprojection.Out != "EPSG:4978" {
		t.Fatalf("Reprojection = %+v, want Out == EPSG:4978", result.Config.Reprojection)
	}
	if len(result.Config.Transformation) != 16 {
		t.Fatalf("Transformation = %v, want a 16-element matrix", result.Config.Transformation)
	}
}

// Scenario 6: empty data, no readable inputs.
func TestPlanNoReadableInputs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "unreadable.txt"), []byte("not a point cloud"), 0o644); err != nil {
		t.Fatal(err)
	}

	ep := storage.NewLocal(dir)
	raw := map[string]interface{}{
		"output": "out",
		"input":  dir + "/*",
	}

	_, err := Plan(context.Background(), raw, ep)
	if err == nil {
		t.Fatal("expected Plan to fail with no readable inputs")
	}
}
