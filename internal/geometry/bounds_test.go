package geometry

import "testing"

func TestExpanderHasNoValue(t *testing.T) {
	if Expander.HasValue() {
		t.Fatal("expander bounds should report HasValue() == false")
	}

	grown := Expander.Grow(Point{X: 1, Y: 2, Z: 3})
	if !grown.HasValue() {
		t.Fatal("growing the expander with a real point should yield valid bounds")
	}
	if grown.Min != (Point{X: 1, Y: 2, Z: 3}) || grown.Max != (Point{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("unexpected bounds after first grow: %v", grown)
	}
}

func TestGrowBounds(t *testing.T) {
	a := Bounds{Min: Point{0, 0, 0}, Max: Point{10, 10, 10}}
	b := Bounds{Min: Point{-5, 2, 20}, Max: Point{5, 12, 30}}

	grown := a.GrowBounds(b)
	want := Bounds{Min: Point{-5, 0, 0}, Max: Point{10, 12, 30}}
	if grown != want {
		t.Fatalf("GrowBounds() = %v, want %v", grown, want)
	}
}

func TestMid(t *testing.T) {
	b := Bounds{Min: Point{0, 0, 0}, Max: Point{10, 20, 30}}
	mid := b.Mid()
	if mid != (Point{X: 5, Y: 10, Z: 15}) {
		t.Fatalf("Mid() = %v", mid)
	}
}

func TestCubeifyNoDelta(t *testing.T) {
	b := Bounds{Min: Point{0, 0, 0}, Max: Point{10, 4, 2}}
	cube := b.Cubeify(nil)

	side := cube.Width()
	if side != 10 {
		t.Fatalf("expected cube side 10, got %v", side)
	}
	if cube.Depth() != 10 || cube.Height() != 10 {
		t.Fatalf("cubeify did not produce equal extents: %v", cube)
	}

	mid := cube.Mid()
	wantMid := b.Mid()
	if mid != wantMid {
		t.Fatalf("cubeify should stay centered on the original midpoint: got %v want %v", mid, wantMid)
	}
}

func TestCubeifyWithDelta(t *testing.T) {
	b := Bounds{Min: Point{0, 0, 0}, Max: Point{9, 3, 1}}
	d := &Delta{Scale: Point{X: 2, Y: 2, Z: 2}}

	cube := b.Cubeify(d)
	if int(cube.Width())%2 != 0 {
		t.Fatalf("cube side should be quantized to a multiple of the delta scale: got %v", cube.Width())
	}
}

func TestDeltifyUndeltifyRoundTrip(t *testing.T) {
	d := &Delta{Scale: Point{X: 0.01, Y: 0.01, Z: 0.01}, Offset: Point{X: 100, Y: 200, Z: 0}}
	b := Bounds{Min: Point{90, 190, -5}, Max: Point{110, 210, 5}}

	quantized := b.Deltify(d)
	restored := quantized.Undeltify(d)

	const eps = 1e-9
	if diff(restored.Min, b.Min) > eps || diff(restored.Max, b.Max) > eps {
		t.Fatalf("round trip mismatch: got %v, want %v", restored, b)
	}
}

func diff(a, b Point) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dz < 0 {
		dz = -dz
	}
	m := dx
	if dy > m {
		m = dy
	}
	if dz > m {
		m = dz
	}
	return m
}

func TestUndeltifyNilDelta(t *testing.T) {
	b := Bounds{Min: Point{1, 2, 3}, Max: Point{4, 5, 6}}
	if got := b.Undeltify(nil); got != b {
		t.Fatalf("Undeltify(nil) should be identity, got %v", got)
	}
}
