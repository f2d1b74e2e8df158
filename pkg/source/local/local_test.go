package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/source"
)

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	write(t, a, "Package: x\nInstalled-Size: 1\n")
	write(t, b, "Package: x\nInstalled-Size: 2\n")

	idx := apt.NewIndex()
	if _, err := source.Load(context.Background(), idx, New(a, b), nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Size("x") != 2048 {
		t.Errorf("second file should win, Size = %d", idx.Size("x"))
	}
}

func TestDocumentsDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "archive.ubuntu.com_ubuntu_dists_noble_main_binary-amd64_Packages"), "Package: m\n")
	write(t, filepath.Join(dir, "archive.ubuntu.com_ubuntu_dists_noble_universe_binary-amd64_Packages"), "Package: u\n")
	write(t, filepath.Join(dir, "archive.ubuntu.com_ubuntu_dists_noble_InRelease"), "ignored")
	write(t, filepath.Join(dir, "lock"), "")

	docs, err := New(dir).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if filepath.Base(docs[0].Name) > filepath.Base(docs[1].Name) {
		t.Error("directory entries should be sorted")
	}
}

func TestDocumentsMissing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "Packages")
	write(t, good, "Package: g\n")

	docs, err := New(filepath.Join(dir, "nope"), good).Documents(context.Background())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
	if len(docs) != 1 {
		t.Errorf("readable files should still be returned, got %d", len(docs))
	}
}

func TestIsPackagesFile(t *testing.T) {
	tests := map[string]bool{
		"Packages":      true,
		"Packages.xz":   true,
		"Packages.gz":   true,
		"Sources.xz":    false,
		"InRelease":     false,
		"Packages.diff": false,
		"deb.debian.org_debian_dists_bookworm_main_binary-amd64_Packages":     true,
		"deb.debian.org_debian_dists_bookworm_main_binary-amd64_Packages.lz4": false,
	}
	for name, want := range tests {
		if got := IsPackagesFile(name); got != want {
			t.Errorf("IsPackagesFile(%q) = %v, want %v", name, got, want)
		}
	}
}
