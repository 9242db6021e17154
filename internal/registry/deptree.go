package registry

import (
	"fmt"
	"io"
)

// BuildDependencyTree builds the dependency tree of root for display. Nodes
// that appear more than once are marked Deduped and not expanded again;
// nodes present in reg are marked Installed. Call Resolve first: the tree
// walk assumes the graph has no cycles.
func BuildDependencyTree(root string, idx Lookuper, reg LocalRegistry) (*DependencyNode, error) {
	seen := make(map[string]bool)
	return buildNode(root, idx, reg, seen)
}

func buildNode(name string, idx Lookuper, reg LocalRegistry, seen map[string]bool) (*DependencyNode, error) {
	node := &DependencyNode{Name: name}

	if seen[name] {
		node.Deduped = true
		return node, nil
	}
	seen[name] = true

	node.Installed = reg != nil && reg.IsInstalled(name)

	rec, err := idx.Lookup(name)
	if err != nil {
		return nil, err
	}
	node.Record = rec

	for _, dep := range rec.Dependencies {
		child, err := buildNode(dep, idx, reg, seen)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// PrintTree prints the dependency tree with box-drawing characters.
func PrintTree(w io.Writer, node *DependencyNode, prefix string, isLast bool) {
	if node == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	label := node.Name
	if node.Record != nil && node.Record.Version != "" {
		label += " v" + node.Record.Version
	}
	if node.Deduped {
		label += " (deduped)"
	} else if node.Installed {
		label += " (already installed)"
	}

	// The root has no connector.
	if prefix == "" {
		fmt.Fprintf(w, "  %s\n", label)
	} else {
		fmt.Fprintf(w, "  %s%s%s\n", prefix, connector, label)
	}

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	} else {
		childPrefix = " "
	}

	for i, child := range node.Children {
		PrintTree(w, child, childPrefix, i == len(node.Children)-1)
	}
}
