package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mip-org/mip-package-manager/internal/manifest"
)

// LocalRegistry is a read-only view of the installed packages.
type LocalRegistry interface {
	IsInstalled(name string) bool
	// InstalledPackages returns installed package names in sorted order.
	InstalledPackages() []string
	// DependenciesOf returns the declared dependencies of an installed
	// package, or nil if the package or its manifest is missing.
	DependenciesOf(name string) []string
	Get(name string) (InstalledPackage, bool)
}

// DirRegistry reads the package store on disk. Every call reflects the
// filesystem at that moment; nothing is cached.
type DirRegistry struct {
	root   string
	logger *log.Logger
}

// NewDirRegistry returns a registry over the package store at root.
func NewDirRegistry(root string, logger *log.Logger) *DirRegistry {
	if logger == nil {
		logger = log.Default()
	}
	return &DirRegistry{root: root, logger: logger}
}

// Root returns the package store directory.
func (r *DirRegistry) Root() string {
	return r.root
}

func (r *DirRegistry) IsInstalled(name string) bool {
	if !validSlotName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(r.root, name))
	return err == nil && info.IsDir()
}

func (r *DirRegistry) InstalledPackages() []string {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("cannot list package store", "dir", r.root, "err", err)
		}
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || !validSlotName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func (r *DirRegistry) DependenciesOf(name string) []string {
	pkg, ok := r.Get(name)
	if !ok {
		return nil
	}
	return pkg.Dependencies
}

// Get returns the installed package and its manifest contents. A package
// whose mip.json is missing or unreadable is returned with no dependencies
// or symbols; an unreadable manifest is logged as a warning.
func (r *DirRegistry) Get(name string) (InstalledPackage, bool) {
	if !r.IsInstalled(name) {
		return InstalledPackage{}, false
	}

	pkg := InstalledPackage{Name: name}
	m, err := r.readManifest(name)
	if err != nil {
		r.logger.Warn("ignoring package manifest", "package", name, "err", err)
		return pkg, true
	}
	if m == nil {
		r.logger.Debug("package has no manifest", "package", name)
		return pkg, true
	}

	pkg.Version = m.Version
	pkg.Dependencies = m.Dependencies
	pkg.ExposedSymbols = m.ExposedSymbols
	return pkg, true
}

// readManifest returns nil without error when the package has no mip.json.
// Only read and JSON syntax failures are errors: a manifest that violates the
// schema is logged and its well-typed fields are still used, so a package
// with a bad version keeps its dependencies.
func (r *DirRegistry) readManifest(name string) (*manifest.LocalManifest, error) {
	path := filepath.Join(r.root, name, manifest.LocalManifestFile)
	m, err := manifest.ReadLocalFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case m == nil && err != nil:
		return nil, fmt.Errorf("%w: %w", ErrLocalManifestUnreadable, err)
	case err != nil:
		r.logger.Warn("package manifest does not match schema; using readable fields", "package", name, "err", err)
	}
	return m, nil
}

// validSlotName rejects names that cannot be a package slot: hidden entries,
// staging directories, and anything that would escape the store.
func validSlotName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, stagingSuffix) {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// MemRegistry is an in-memory LocalRegistry.
type MemRegistry struct {
	pkgs map[string]InstalledPackage
}

// NewMemRegistry returns a registry holding pkgs.
func NewMemRegistry(pkgs ...InstalledPackage) *MemRegistry {
	r := &MemRegistry{pkgs: make(map[string]InstalledPackage, len(pkgs))}
	for _, p := range pkgs {
		r.Add(p)
	}
	return r
}

// Add records p as installed, replacing any package with the same name.
func (r *MemRegistry) Add(p InstalledPackage) {
	r.pkgs[p.Name] = p
}

// Remove forgets the named package.
func (r *MemRegistry) Remove(name string) {
	delete(r.pkgs, name)
}

func (r *MemRegistry) IsInstalled(name string) bool {
	_, ok := r.pkgs[name]
	return ok
}

func (r *MemRegistry) InstalledPackages() []string {
	names := make([]string, 0, len(r.pkgs))
	for name := range r.pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *MemRegistry) DependenciesOf(name string) []string {
	return r.pkgs[name].Dependencies
}

func (r *MemRegistry) Get(name string) (InstalledPackage, bool) {
	p, ok := r.pkgs[name]
	return p, ok
}
