package registry

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SymbolCount is the number of symbols one package exposes.
type SymbolCount struct {
	Package string `json:"package"`
	Count   int    `json:"count"`
}

// Collision is a symbol exposed by more than one package.
type Collision struct {
	Symbol   string   `json:"symbol"`
	Packages []string `json:"packages"`
}

// CollisionReport is the result of FindNameCollisions.
type CollisionReport struct {
	Counts     []SymbolCount `json:"counts"`
	Collisions []Collision   `json:"collisions"`
}

// FindNameCollisions scans every installed package's exposed symbols.
// Counts follow InstalledPackages order; collisions are sorted by symbol and
// list packages in scan order. A symbol repeated within one package is not a
// collision.
func FindNameCollisions(reg LocalRegistry) *CollisionReport {
	report := &CollisionReport{}
	owners := make(map[string][]string)

	for _, name := range reg.InstalledPackages() {
		pkg, _ := reg.Get(name)
		report.Counts = append(report.Counts, SymbolCount{Package: name, Count: len(pkg.ExposedSymbols)})

		seen := make(map[string]bool, len(pkg.ExposedSymbols))
		for _, sym := range pkg.ExposedSymbols {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			owners[sym] = append(owners[sym], name)
		}
	}

	for sym, pkgs := range owners {
		if len(pkgs) > 1 {
			report.Collisions = append(report.Collisions, Collision{Symbol: sym, Packages: pkgs})
		}
	}
	sort.Slice(report.Collisions, func(i, j int) bool {
		return report.Collisions[i].Symbol < report.Collisions[j].Symbol
	})
	return report
}

// PrintCollisionReport writes the report in human-readable form.
func PrintCollisionReport(w io.Writer, report *CollisionReport) {
	fmt.Fprintln(w, "Exposed symbols per package:")
	for _, c := range report.Counts {
		fmt.Fprintf(w, "  - %s: %d symbol(s)\n", c.Package, c.Count)
	}
	fmt.Fprintln(w)

	if len(report.Collisions) == 0 {
		fmt.Fprintln(w, "No name collisions found")
		return
	}

	fmt.Fprintf(w, "Name collisions found: %d\n", len(report.Collisions))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Colliding symbols:")
	for _, c := range report.Collisions {
		fmt.Fprintf(w, "  - %s (found in: %s)\n", c.Symbol, strings.Join(c.Packages, ", "))
	}
}
