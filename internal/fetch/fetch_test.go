package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// createTestZip builds a zip archive in memory from name -> content pairs.
func createTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
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
	return buf.Bytes()
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.mhl")
	if err := os.WriteFile(path, createTestZip(t, files), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/index.json": true,
		"http://localhost:8080/a.mhl":    true,
		"./pkg.mhl":                      false,
		"/tmp/index.json":                false,
		"C:\\packages\\a.mhl":            false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q, want %q", ua, userAgent)
		}
		w.Write([]byte(`{"packages":[]}`))
	}))
	defer server.Close()

	c := New(WithHTTPClient(server.Client()))
	body, err := c.Get(context.Background(), server.URL+"/index.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"packages":[]}` {
		t.Errorf("body = %q", body)
	}
}

func TestGet_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := New(WithHTTPClient(server.Client()))
	if _, err := c.Get(context.Background(), server.URL+"/missing.json"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestDownload(t *testing.T) {
	data := createTestZip(t, map[string]string{"mip.json": `{"dependencies":[]}`})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.Write(data)
	}))
	defer server.Close()

	var lastDownloaded, lastTotal int64
	c := New(
		WithHTTPClient(server.Client()),
		WithProgress(func(downloaded, total int64) {
			lastDownloaded, lastTotal = downloaded, total
		}),
	)

	dest := filepath.Join(t.TempDir(), "pkg.mhl")
	if err := c.Download(context.Background(), server.URL+"/pkg.mhl", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("downloaded file does not exist: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("downloaded content differs from served content")
	}
	if lastDownloaded != int64(len(data)) || lastTotal != int64(len(data)) {
		t.Errorf("progress = %d/%d, want %d/%d", lastDownloaded, lastTotal, len(data), len(data))
	}
}

func TestDownload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(WithHTTPClient(server.Client()))
	dest := filepath.Join(t.TempDir(), "pkg.mhl")
	if err := c.Download(context.Background(), server.URL+"/pkg.mhl", dest); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination file should not exist after failed download")
	}
}

func TestDownload_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(WithHTTPClient(server.Client()))
	if err := c.Download(ctx, server.URL+"/pkg.mhl", filepath.Join(t.TempDir(), "pkg.mhl")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestExtractZip(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"mip.json":        `{"package":"alpha","dependencies":[]}`,
		"alpha/alpha.m":   "function alpha()\nend\n",
		"alpha/+ns/sub.m": "function sub()\nend\n",
	})

	dest := t.TempDir()
	if err := ExtractZip(archive, dest); err != nil {
		t.Fatalf("ExtractZip failed: %v", err)
	}

	for _, rel := range []string{"mip.json", "alpha/alpha.m", "alpha/+ns/sub.m"} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s to be extracted: %v", rel, err)
		}
	}
}

func TestExtractZip_RejectsTraversal(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"../escape.m": "evil",
	})

	dest := filepath.Join(t.TempDir(), "out")
	if err := ExtractZip(archive, dest); err == nil {
		t.Fatal("expected error for path traversal entry")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escape.m")); !os.IsNotExist(err) {
		t.Error("traversal entry was written outside destination")
	}
}

func TestExtractZip_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mhl")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ExtractZip(path, t.TempDir()); err == nil {
		t.Fatal("expected error for invalid archive")
	}
}
