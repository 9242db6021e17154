package registry

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

// rec is shorthand for an index record with the given dependencies.
func rec(name string, deps ...string) PackageRecord {
	return PackageRecord{
		Name:         name,
		Version:      "1.0.0",
		Locator:      "https://example.com/" + name + ".mhl",
		Dependencies: deps,
	}
}

func mustIndex(t *testing.T, records ...PackageRecord) *Index {
	t.Helper()
	idx, err := NewIndex(records)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func installed(name string, deps ...string) InstalledPackage {
	return InstalledPackage{Name: name, Version: "1.0.0", Dependencies: deps}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// writeZip writes a zip archive with the given files to dir/name and returns
// its path.
func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for fname, content := range files {
		w, err := zw.Create(fname)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

// writeInstalled creates a package slot under root with the given mip.json
// contents. An empty manifest writes no mip.json at all.
func writeInstalled(t *testing.T, root, name, manifestJSON string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if manifestJSON == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "mip.json"), []byte(manifestJSON), 0644); err != nil {
		t.Fatal(err)
	}
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}
