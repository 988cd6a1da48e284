package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hobu-go/entwine/internal/storage"
)

func TestDirectorifyEndsWithStar(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)
	if got := Directorify(ep, "foo*"); got != "foo*" {
		t.Fatalf("Directorify(foo*) = %q", got)
	}
}

func TestDirectorifyDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	ep := storage.NewLocal(dir)
	if got := Directorify(ep, "sub"); got != "sub*" {
		t.Fatalf("Directorify(sub) = %q, want %q", got, "sub*")
	}
}

func TestDirectorifyNoDot(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)
	if got := Directorify(ep, "foo"); got != "foo/*" {
		t.Fatalf("Directorify(foo) = %q, want %q", got, "foo/*")
	}
}

func TestDirectorifySingleFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "foo.las"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ep := storage.NewLocal(dir)
	if got := Directorify(ep, "foo.las"); got != "foo.las" {
		t.Fatalf("Directorify(foo.las) = %q, want %q", got, "foo.las")
	}
}

func TestFileInfosPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.las", "b.las"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ep := storage.NewLocal(dir)

	infos, err := FileInfos(context.Background(), ep, []string{"a.las", "b.las"}, false)
	if err != nil {
		t.Fatalf("FileInfos failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 file infos, got %d", len(infos))
	}
	if infos[0].Path != "a.las" || infos[1].Path != "b.las" {
		t.Fatalf("order not preserved: %v", infos)
	}
}

func TestFileInfosNilInput(t *testing.T) {
	dir := t.TempDir()
	ep := storage.NewLocal(dir)
	infos, err := FileInfos(context.Background(), ep, nil, false)
	if err != nil {
		t.Fatalf("FileInfos(nil) failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no file infos, got %v", infos)
	}
}
