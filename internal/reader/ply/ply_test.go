package ply

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/reader"
)

const asciiPLY = `ply
format ascii 1.0
comment generated for a test
element vertex 3
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
end_header
0 0 0 255 0 0
1 2 3 0 255 0
-1 -2 -3 0 0 255
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGoodRecognizesExtension(t *testing.T) {
	r := New()
	if !r.Good("cloud.ply") {
		t.Fatal("expected .ply to be recognized")
	}
	if r.Good("cloud.las") {
		t.Fatal("expected .las to be rejected")
	}
}

func TestPreviewReadsHeader(t *testing.T) {
	path := writeTemp(t, "a.ply", asciiPLY)
	r := New()

	p, err := r.Preview(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected a preview")
	}
	if p.NumPoints != 3 {
		t.Fatalf("NumPoints = %d, want 3", p.NumPoints)
	}
	wantBounds := geometry.Bounds{Min: geometry.Point{X: -1, Y: -2, Z: -3}, Max: geometry.Point{X: 1, Y: 2, Z: 3}}
	if p.Bounds != wantBounds {
		t.Fatalf("Bounds = %v, want %v (scanned from the vertex body)", p.Bounds, wantBounds)
	}
	want := []string{"X", "Y", "Z", "Red", "Green", "Blue"}
	if len(p.DimNames) != len(want) {
		t.Fatalf("DimNames = %v", p.DimNames)
	}
	for i, name := range want {
		if p.DimNames[i] != name {
			t.Fatalf("DimNames[%d] = %q, want %q", i, p.DimNames[i], name)
		}
	}
}

func TestPreviewMissingFileReturnsNilNil(t *testing.T) {
	r := New()
	p, err := r.Preview(context.Background(), "/nonexistent/path.ply", nil)
	if err != nil || p != nil {
		t.Fatalf("Preview(missing) = (%v, %v), want (nil, nil)", p, err)
	}
}

func TestRunStreamsEveryPoint(t *testing.T) {
	path := writeTemp(t, "a.ply", asciiPLY)
	r := New()

	var pts []geometry.Point
	ok, err := r.Run(context.Background(), func(p geometry.Point) error {
		pts = append(pts, p)
		return nil
	}, path, nil, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !ok {
		t.Fatal("expected Run to succeed")
	}
	if len(pts) != 3 {
		t.Fatalf("got %d points, want 3", len(pts))
	}
	if pts[1] != (geometry.Point{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("pts[1] = %v", pts[1])
	}
}

func TestRunAppliesTransform(t *testing.T) {
	path := writeTemp(t, "a.ply", asciiPLY)
	r := New()

	translate := []float64{
		1, 0, 0, 10,
		0, 1, 0, 20,
		0, 0, 1, 30,
		0, 0, 0, 1,
	}

	var pts []geometry.Point
	_, err := r.Run(context.Background(), func(p geometry.Point) error {
		pts = append(pts, p)
		return nil
	}, path, nil, translate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if pts[0] != (geometry.Point{X: 10, Y: 20, Z: 30}) {
		t.Fatalf("pts[0] = %v", pts[0])
	}
}

func TestDefaultDimensionType(t *testing.T) {
	r := New()
	if bt, size, ok := r.DefaultDimensionType("x"); !ok || bt != geometry.Floating || size != 8 {
		t.Fatalf("DefaultDimensionType(x) = (%v, %d, %v)", bt, size, ok)
	}
	if bt, size, ok := r.DefaultDimensionType("red"); !ok || bt != geometry.Unsigned || size != 1 {
		t.Fatalf("DefaultDimensionType(red) = (%v, %d, %v)", bt, size, ok)
	}
	if _, _, ok := r.DefaultDimensionType("mystery"); ok {
		t.Fatal("expected unrecognized dimension to report ok=false")
	}
}

func TestTransformGrowsAllCorners(t *testing.T) {
	r := New()
	b := geometry.Bounds{Min: geometry.Point{X: -1, Y: -1, Z: -1}, Max: geometry.Point{X: 1, Y: 1, Z: 1}}
	identity := []float64{
		1, 0, 0, 5,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	got := r.Transform(b, identity)
	want := geometry.Bounds{Min: geometry.Point{X: 4, Y: -1, Z: -1}, Max: geometry.Point{X: 6, Y: 1, Z: 1}}
	if got != want {
		t.Fatalf("Transform() = %v, want %v", got, want)
	}
}

var _ reader.Reader = New()
