package registry

import "io"

// PackageRecord is one package as described by the index.
type PackageRecord struct {
	Name         string
	Version      string
	Locator      string // URL or local path of the .mhl archive
	Dependencies []string
	Architecture string // variant tag chosen at load time; informative only
}

// InstalledPackage is a package found in the store, described by its mip.json.
type InstalledPackage struct {
	Name           string
	Version        string
	Dependencies   []string
	ExposedSymbols []string
}

// DependencyNode represents a node in the dependency tree.
type DependencyNode struct {
	Name      string
	Record    *PackageRecord
	Children  []*DependencyNode
	Deduped   bool // true if this package was already seen earlier in the tree
	Installed bool // true if already present in the store
}

// InstallPlan summarizes what will be installed.
type InstallPlan struct {
	Root             *DependencyNode
	Order            []string         // full resolution order, dependencies first
	ToInstall        []*PackageRecord // Order minus installed packages
	AlreadyInstalled []string
}

// NothingToDo reports whether every package in the plan is already installed.
func (p *InstallPlan) NothingToDo() bool {
	return len(p.ToInstall) == 0
}

// UninstallPlan lists the packages to remove, dependents before the target.
type UninstallPlan struct {
	Target     string
	Dependents []string
	Order      []string
}

// ProgressFunc is called after each step of a plan. err is nil on success.
type ProgressFunc func(w io.Writer, name string, err error)
