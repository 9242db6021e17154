package userdata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_CreatesLayout(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("MIP_ROOT", tmp)
	t.Setenv("MIP_PACKAGES", "")

	var buf bytes.Buffer
	matlabRoot, err := Setup(&buf)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if matlabRoot != filepath.Join(tmp, "matlab") {
		t.Errorf("matlabRoot = %s", matlabRoot)
	}

	assertDirExists(t, filepath.Join(tmp, "packages"))
	assertDirExists(t, filepath.Join(tmp, "cache"))
	assertFileExists(t, filepath.Join(tmp, "matlab", "mip.m"))
	assertFileExists(t, filepath.Join(tmp, "matlab", "+mip", "import.m"))

	if !strings.Contains(buf.String(), "[ OK ] Created") {
		t.Errorf("expected creation messages, got:\n%s", buf.String())
	}
}

func TestSetup_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("MIP_ROOT", tmp)
	t.Setenv("MIP_PACKAGES", "")

	if _, err := Setup(&bytes.Buffer{}); err != nil {
		t.Fatalf("first Setup: %v", err)
	}

	var buf bytes.Buffer
	if _, err := Setup(&buf); err != nil {
		t.Fatalf("second Setup: %v", err)
	}
	if !strings.Contains(buf.String(), "[SKIP]") {
		t.Errorf("expected skip messages on second run, got:\n%s", buf.String())
	}
}

func TestRefreshMatlabIntegration_ReplacesStaleFiles(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("MIP_ROOT", tmp)

	stale := filepath.Join(tmp, "matlab", "+mip", "old_function.m")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("% stale"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RefreshMatlabIntegration(); err != nil {
		t.Fatalf("RefreshMatlabIntegration: %v", err)
	}

	if _, err := os.Stat(stale); err == nil {
		t.Error("stale file in +mip should have been removed")
	}
	assertFileExists(t, filepath.Join(tmp, "matlab", "+mip", "import.m"))
}

func TestEnsureDir_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDir(&bytes.Buffer{}, path, DirPermNormal); err == nil {
		t.Error("expected error when path is a regular file")
	}
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}
