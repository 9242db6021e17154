package registry

import "slices"

// FindDependents returns every installed package that depends on target,
// directly or transitively, in discovery order. Packages are scanned in
// InstalledPackages order. The result may contain duplicates; a single
// visited set shared by the whole scan guarantees termination even when
// the installed manifests form a cycle.
//
// The registry is read once up front, so each manifest is read (and any
// warning about it logged) a single time.
func FindDependents(target string, reg LocalRegistry) []string {
	s := &dependentScan{
		names:   reg.InstalledPackages(),
		deps:    make(map[string][]string),
		visited: make(map[string]bool),
	}
	for _, name := range s.names {
		s.deps[name] = reg.DependenciesOf(name)
	}
	return s.scan(target)
}

// dependentScan is a snapshot of the registry plus the shared visited set.
type dependentScan struct {
	names   []string
	deps    map[string][]string
	visited map[string]bool
}

func (s *dependentScan) scan(target string) []string {
	if s.visited[target] {
		return nil
	}
	s.visited[target] = true

	var dependents []string
	for _, name := range s.names {
		if name == target {
			continue
		}
		if slices.Contains(s.deps[name], target) {
			dependents = append(dependents, name)
			dependents = append(dependents, s.scan(name)...)
		}
	}
	return dependents
}
