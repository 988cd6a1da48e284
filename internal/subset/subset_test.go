package subset

import (
	"testing"

	"github.com/hobu-go/entwine/internal/config"
	"github.com/hobu-go/entwine/internal/geometry"
)

func cube() *geometry.Bounds {
	return &geometry.Bounds{
		Min: geometry.Point{X: -100, Y: -100, Z: -100},
		Max: geometry.Point{X: 100, Y: 100, Z: 100},
	}
}

func TestAccommodateNoSubsetIsNoop(t *testing.T) {
	cfg := &config.Config{BoundsConforming: cube(), NullDepth: 7, BaseDepth: 10}
	sub, err := Accommodate(cfg)
	if err != nil {
		t.Fatalf("Accommodate failed: %v", err)
	}
	if sub != nil {
		t.Fatal("expected no subset when cfg.Subset is nil")
	}
	if cfg.NullDepth != 7 || cfg.BaseDepth != 10 {
		t.Fatal("expected depths untouched when no subset is configured")
	}
}

func TestAccommodateRaisesNullDepth(t *testing.T) {
	cfg := &config.Config{
		BoundsConforming: cube(),
		NullDepth:        1,
		BaseDepth:        10,
		PointsPerChunk:   262144,
		Subset:           &config.SubsetSpec{ID: 1, Of: 16},
	}
	sub, err := Accommodate(cfg)
	if err != nil {
		t.Fatalf("Accommodate failed: %v", err)
	}
	if sub == nil {
		t.Fatal("expected a resolved subset")
	}
	if cfg.NullDepth != sub.MinimumNullDepth() {
		t.Fatalf("NullDepth = %d, want %d", cfg.NullDepth, sub.MinimumNullDepth())
	}
	if cfg.ResolvedSubset != sub {
		t.Fatal("expected cfg.ResolvedSubset to be set")
	}
}

func TestAccommodateRaisesBaseDepthAndRecordsBump(t *testing.T) {
	cfg := &config.Config{
		BoundsConforming: cube(),
		NullDepth:        7,
		BaseDepth:        1,
		PointsPerChunk:   262144,
		Subset:           &config.SubsetSpec{ID: 1, Of: 16},
	}
	sub, err := Accommodate(cfg)
	if err != nil {
		t.Fatalf("Accommodate failed: %v", err)
	}
	want := sub.MinimumBaseDepth(cfg.PointsPerChunk)
	if cfg.BaseDepth != want {
		t.Fatalf("BaseDepth = %d, want %d", cfg.BaseDepth, want)
	}
	if cfg.BaseDepthBumpedFrom == nil || *cfg.BaseDepthBumpedFrom != 1 {
		t.Fatalf("expected BaseDepthBumpedFrom = 1, got %v", cfg.BaseDepthBumpedFrom)
	}
}

func TestAccommodateRejectsInvalidSubset(t *testing.T) {
	cfg := &config.Config{
		BoundsConforming: cube(),
		PointsPerChunk:   262144,
		Subset:           &config.SubsetSpec{ID: 3, Of: 3},
	}
	if _, err := Accommodate(cfg); err == nil {
		t.Fatal("expected an error for a non-power-of-2 subset.of")
	}
}
