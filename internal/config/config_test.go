package config

import (
	"context"
	"encoding/json"
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
0 0 0
1 1 1
`

func writePly(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(plyFixture), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestApplyDefaultsFillsEveryKey(t *testing.T) {
	out := ApplyDefaults(map[string]interface{}{"output": "out"})
	for k := range defaults {
		if _, ok := out[k]; !ok {
			t.Fatalf("ApplyDefaults missing key %q", k)
		}
	}
	if out["output"] != "out" {
		t.Fatalf("ApplyDefaults overwrote an explicit key")
	}
}

func TestNormalizeRequiresOutput(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)
	_, err := Normalize(context.Background(), map[string]interface{}{}, ep)
	if _, ok := err.(ErrConfigInvalid); !ok {
		t.Fatalf("Normalize() = %v, want ErrConfigInvalid", err)
	}
}

func TestNormalizeSkipsInferenceWhenFullySpecified(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output":        "out",
		"input":         "a.ply",
		"bounds":        []interface{}{0.0, 0.0, 0.0, 1.0, 1.0, 1.0},
		"numPointsHint": float64(2),
		"schema": []interface{}{
			map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)},
		},
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.BoundsConforming == nil || cfg.Schema == nil || cfg.NumPointsHint != 2 {
		t.Fatalf("expected fully-specified config to pass through unchanged, got %+v", cfg)
	}
	if len(cfg.FileInfo) != 1 {
		t.Fatalf("expected one resolved file, got %d", len(cfg.FileInfo))
	}
}

func TestNormalizeRunsInferenceWhenBoundsMissing(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output": "out",
		"input":  "a.ply",
		"tmp":    filepath.Join(dir, "tmp"),
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.BoundsConforming == nil {
		t.Fatal("expected bounds to be inferred")
	}
	if cfg.Schema == nil || len(cfg.Schema.Dims) == 0 {
		t.Fatal("expected a synthesized schema")
	}
	if _, ok := cfg.Schema.Find("PointId"); !ok {
		t.Fatal("expected synthesized schema to carry a PointId dim")
	}
	if _, ok := cfg.Schema.Find("OriginId"); !ok {
		t.Fatal("expected synthesized schema to carry an OriginId dim")
	}
	if cfg.NumPointsHint != 2 {
		t.Fatalf("NumPointsHint = %d, want 2", cfg.NumPointsHint)
	}
}

func TestNormalizeCesiumForcesAbsoluteAndReprojection(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output": "out",
		"input":  "a.ply",
		"tmp":    filepath.Join(dir, "tmp"),
		"formats": map[string]interface{}{
			"cesium": map[string]interface{}{},
		},
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !cfg.Absolute {
		t.Fatal("expected cesium presence to force absolute = true")
	}
	if cfg.Reprojection == nil || cfg.Reprojection.Out != cesiumOutSRS {
		t.Fatalf("expected reprojection.out = %q, got %+v", cesiumOutSRS, cfg.Reprojection)
	}
	if cfg.Delta != nil {
		t.Fatal("expected no delta once absolute is forced true")
	}
}

func TestNormalizeHonorsOffsetWithoutScale(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output":        "out",
		"input":         "a.ply",
		"bounds":        []interface{}{0.0, 0.0, 0.0, 1.0, 1.0, 1.0},
		"numPointsHint": float64(2),
		"schema": []interface{}{
			map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)},
		},
		"offset": []interface{}{1.0, 2.0, 3.0},
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.Delta == nil {
		t.Fatal("expected offset-only config to produce a Delta")
	}
	want := geometry.Point{X: 1, Y: 2, Z: 3}
	if cfg.Delta.Offset != want {
		t.Fatalf("Delta.Offset = %v, want %v", cfg.Delta.Offset, want)
	}
	wantScale := geometry.Point{X: 1, Y: 1, Z: 1}
	if cfg.Delta.Scale != wantScale {
		t.Fatalf("Delta.Scale = %v, want default %v", cfg.Delta.Scale, wantScale)
	}
}

func TestNormalizeLoadsInferenceCache(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)

	doc := inferenceDoc{
		NumPoints: 5,
		Bounds: geometry.Bounds{
			Min: geometry.Point{X: 0, Y: 0, Z: 0},
			Max: geometry.Point{X: 1, Y: 1, Z: 1},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cached.entwine-inference"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	raw := map[string]interface{}{
		"output": "out",
		"input":  "cached.entwine-inference",
		"schema": []interface{}{
			map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)},
		},
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.NumPointsHint != 5 {
		t.Fatalf("NumPointsHint = %d, want 5 (adopted from cache)", cfg.NumPointsHint)
	}
	if cfg.BoundsConforming == nil {
		t.Fatal("expected bounds adopted from cache")
	}
}

func TestNormalizeRejectsBadSubset(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output":        "out",
		"input":         "a.ply",
		"bounds":        []interface{}{0.0, 0.0, 0.0, 1.0, 1.0, 1.0},
		"numPointsHint": float64(2),
		"schema": []interface{}{
			map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)},
		},
		"subset": map[string]interface{}{"id": float64(5), "of": float64(4)},
	}

	_, err := Normalize(context.Background(), raw, ep)
	if _, ok := err.(ErrConfigInvalid); !ok {
		t.Fatalf("Normalize() = %v, want ErrConfigInvalid for id > of", err)
	}
}

func TestNormalizeAcceptsLastSubset(t *testing.T) {
	dir := t.TempDir()
	writePly(t, dir, "a.ply")
	ep := storage.NewLocal(dir)

	raw := map[string]interface{}{
		"output":        "out",
		"input":         "a.ply",
		"bounds":        []interface{}{0.0, 0.0, 0.0, 1.0, 1.0, 1.0},
		"numPointsHint": float64(2),
		"schema": []interface{}{
			map[string]interface{}{"name": "X", "type": "floating", "size": float64(8)},
		},
		"subset": map[string]interface{}{"id": float64(4), "of": float64(4)},
	}

	cfg, err := Normalize(context.Background(), raw, ep)
	if err != nil {
		t.Fatalf("Normalize() = %v, want success for the last 1-based subset (id == of)", err)
	}
	if cfg.Subset == nil || cfg.Subset.ID != 4 || cfg.Subset.Of != 4 {
		t.Fatalf("Normalize() Subset = %v, want {ID:4 Of:4}", cfg.Subset)
	}
}

func TestAsScalarComponentAcceptsDecimalStrings(t *testing.T) {
	f, err := asScalarComponent("0.001")
	if err != nil {
		t.Fatal(err)
	}
	if f != 0.001 {
		t.Fatalf("asScalarComponent(%q) = %v, want 0.001", "0.001", f)
	}
}

func TestAsScalarComponentRejectsGarbage(t *testing.T) {
	if _, err := asScalarComponent("not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric scale string")
	}
}
