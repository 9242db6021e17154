package registry

import (
	"fmt"
	"io"
)

// PlanUninstall returns the removal order for target: dependents first, each
// once in first-seen order, then target.
func PlanUninstall(target string, dependents []string) []string {
	seen := make(map[string]bool, len(dependents)+1)
	order := make([]string, 0, len(dependents)+1)
	for _, name := range dependents {
		if name == target || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	return append(order, target)
}

// BuildUninstallPlan scans reg for everything that depends on target and
// plans their removal. An absent target is ErrNotInstalled.
func BuildUninstallPlan(target string, reg LocalRegistry) (*UninstallPlan, error) {
	if !reg.IsInstalled(target) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, target)
	}

	order := PlanUninstall(target, FindDependents(target, reg))
	return &UninstallPlan{
		Target:     target,
		Dependents: order[:len(order)-1],
		Order:      order,
	}, nil
}

// PrintUninstallPlan prints the packages to be removed. A plan that removes
// only the target prints nothing.
func PrintUninstallPlan(w io.Writer, plan *UninstallPlan) {
	if len(plan.Order) < 2 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The following packages will be uninstalled:")
	for _, name := range plan.Order {
		if name == plan.Target {
			fmt.Fprintf(w, "  - %s\n", name)
		} else {
			fmt.Fprintf(w, "  - %s (depends on %s)\n", name, plan.Target)
		}
	}
	fmt.Fprintln(w)
}
