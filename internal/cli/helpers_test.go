package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv is an isolated ~/.mip plus a served package index.
type testEnv struct {
	root     string
	packages string
	server   *httptest.Server
	files    map[string][]byte
}

// setupEnv points MIP_ROOT at a temp dir and starts an index server.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		root:  t.TempDir(),
		files: make(map[string][]byte),
	}
	env.packages = filepath.Join(env.root, "packages")

	t.Setenv("MIP_ROOT", env.root)
	t.Setenv("MIP_PACKAGES", "")
	t.Setenv("MIP_INDEX_URL", "")
	t.Setenv("MIP_ARCHITECTURE", "linux_x86_64")

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := env.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(env.server.Close)
	return env
}

// indexURL is the URL of the served index.json.
func (e *testEnv) indexURL() string {
	return e.server.URL + "/index.json"
}

// publish adds a package archive to the server and returns its index entry.
func (e *testEnv) publish(t *testing.T, name, version string, deps []string, symbols ...string) map[string]any {
	t.Helper()

	filename := name + "-" + version + ".mhl"
	e.files[filename] = mhl(t, name, version, deps, symbols...)
	if deps == nil {
		deps = []string{}
	}
	return map[string]any{
		"name":         name,
		"version":      version,
		"filename":     filename,
		"dependencies": deps,
	}
}

// setIndex serves entries as index.json.
func (e *testEnv) setIndex(t *testing.T, entries ...map[string]any) {
	t.Helper()
	data, err := json.Marshal(map[string]any{"packages": entries})
	if err != nil {
		t.Fatal(err)
	}
	e.files["index.json"] = data
}

// install writes an installed package slot directly.
func (e *testEnv) install(t *testing.T, name string, deps []string, symbols ...string) {
	t.Helper()
	dir := filepath.Join(e.packages, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(localManifest(name, "1.0.0", deps, symbols))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mip.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) isInstalled(name string) bool {
	_, err := os.Stat(filepath.Join(e.packages, name, "mip.json"))
	return err == nil
}

func localManifest(name, version string, deps, symbols []string) map[string]any {
	if deps == nil {
		deps = []string{}
	}
	if symbols == nil {
		symbols = []string{}
	}
	return map[string]any{
		"package":         name,
		"version":         version,
		"dependencies":    deps,
		"exposed_symbols": symbols,
	}
}

// mhl builds a package archive holding mip.json and one MATLAB file.
func mhl(t *testing.T, name, version string, deps []string, symbols ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest, err := json.Marshal(localManifest(name, version, deps, symbols))
	if err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"mip.json":  manifest,
		name + ".m": []byte("function " + name + "()\nend\n"),
	}
	for fname, content := range files {
		f, err := zw.Create(fname)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// resetFlags restores every command flag to its default between runs.
func resetFlags() {
	verbose = false

	installNoDeps, installYes, installDryRun = false, false, false
	installIndexes = indexFlags{}

	uninstallYes, uninstallDryRun = false, false

	listJSON, listOutdated = false, false
	listIndexes = indexFlags{}

	searchJSON = false
	searchIndexes = indexFlags{}

	collisionsJSON = false
	versionShort, versionJSON = false, false
}

// run executes the CLI with args, feeding stdin to prompts.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
