//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// testEnv holds an isolated package store and a served package index.
type testEnv struct {
	Root     string // MIP_ROOT
	Packages string // <root>/packages
	Cache    string // <root>/cache
	Server   *httptest.Server
	files    map[string][]byte
}

// setupTestEnv creates isolated temp directories and an HTTP server for the
// index and its archives. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{
		Root:     root,
		Packages: filepath.Join(root, "packages"),
		Cache:    filepath.Join(root, "cache"),
		files:    make(map[string][]byte),
	}

	t.Setenv("MIP_ROOT", env.Root)
	t.Setenv("MIP_PACKAGES", "")
	t.Setenv("MIP_ARCHITECTURE", "linux_x86_64")

	env.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := env.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(env.Server.Close)

	return env
}

// IndexURL is where the served index.json lives.
func (e *testEnv) IndexURL() string {
	return e.Server.URL + "/index.json"
}

// pkg describes one published package variant.
type pkg struct {
	Name         string
	Version      string
	Architecture string
	Dependencies []string
	Symbols      []string
}

// publishIndex serves an index listing pkgs, each with a real archive.
func (e *testEnv) publishIndex(t *testing.T, pkgs ...pkg) {
	t.Helper()

	entries := make([]map[string]any, 0, len(pkgs))
	for _, p := range pkgs {
		filename := p.Name + "-" + p.Version
		if p.Architecture != "" {
			filename += "-" + p.Architecture
		}
		filename += ".mhl"
		e.files["archives/"+filename] = buildArchive(t, p)

		entry := map[string]any{
			"name":         p.Name,
			"version":      p.Version,
			"filename":     "archives/" + filename,
			"dependencies": nonNil(p.Dependencies),
		}
		if p.Architecture != "" {
			entry["architecture"] = p.Architecture
		}
		entries = append(entries, entry)
	}

	data, err := json.Marshal(map[string]any{"packages": entries})
	if err != nil {
		t.Fatalf("marshaling index: %v", err)
	}
	e.files["index.json"] = data
}

// buildArchive zips a package holding mip.json and one .m file.
func buildArchive(t *testing.T, p pkg) []byte {
	t.Helper()

	manifest, err := json.Marshal(map[string]any{
		"package":         p.Name,
		"version":         p.Version,
		"dependencies":    nonNil(p.Dependencies),
		"exposed_symbols": nonNil(p.Symbols),
	})
	if err != nil {
		t.Fatalf("marshaling mip.json: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string][]byte{
		"mip.json":    manifest,
		p.Name + ".m": []byte("function " + p.Name + "()\nend\n"),
	} {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// assertInstalled fails the test unless every name has a mip.json slot.
func assertInstalled(t *testing.T, packagesRoot string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(packagesRoot, name, "mip.json")); err != nil {
			t.Errorf("expected %s to be installed: %v", name, err)
		}
	}
}

// assertNotInstalled fails the test if any name has a slot.
func assertNotInstalled(t *testing.T, packagesRoot string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(packagesRoot, name)); err == nil {
			t.Errorf("expected %s NOT to be installed", name)
		}
	}
}
