package registry

import (
	"errors"
	"slices"
)

// Resolve returns root and its transitive dependencies in install order:
// every package appears after all of its dependencies and root comes last.
// Packages reachable along several paths appear once. A cycle is reported as
// a *CycleError and a missing package as a *NotFoundError.
func Resolve(root string, idx Lookuper) ([]string, error) {
	r := &resolver{idx: idx, visited: make(map[string]bool)}
	return r.visit(root, nil)
}

// resolver holds the state of one resolution. path is the chain of packages
// on the current branch and is copied for every child; visited is shared by
// the whole traversal.
type resolver struct {
	idx     Lookuper
	visited map[string]bool
}

func (r *resolver) visit(name string, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		cycle := append(slices.Clone(path), name)
		return nil, &CycleError{Path: cycle}
	}
	if r.visited[name] {
		return nil, nil
	}

	rec, err := r.idx.Lookup(name)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			nf.RequiredBy = slices.Clone(path)
		}
		return nil, err
	}

	r.visited[name] = true
	path = append(slices.Clone(path), name)

	var order []string
	for _, dep := range rec.Dependencies {
		sub, err := r.visit(dep, path)
		if err != nil {
			return nil, err
		}
		order = append(order, sub...)
	}
	return append(order, name), nil
}
