package registry

import (
	"fmt"
	"io"
)

// PlanInstall splits a resolution order into the packages still to install
// and those already present in reg. Both keep the order of the input.
func PlanInstall(order []string, reg LocalRegistry) (toInstall, installed []string) {
	for _, name := range order {
		if reg.IsInstalled(name) {
			installed = append(installed, name)
		} else {
			toInstall = append(toInstall, name)
		}
	}
	return toInstall, installed
}

// BuildInstallPlan resolves root against idx and plans its installation.
// If noDeps is true, only root is considered and its dependencies are not
// resolved. Resolution errors are returned before anything is touched.
func BuildInstallPlan(root string, idx Lookuper, reg LocalRegistry, noDeps bool) (*InstallPlan, error) {
	if noDeps {
		return buildNoDepsPlan(root, idx, reg)
	}

	order, err := Resolve(root, idx)
	if err != nil {
		return nil, err
	}

	tree, err := BuildDependencyTree(root, idx, reg)
	if err != nil {
		return nil, err
	}

	return newInstallPlan(tree, order, idx, reg)
}

func buildNoDepsPlan(root string, idx Lookuper, reg LocalRegistry) (*InstallPlan, error) {
	rec, err := idx.Lookup(root)
	if err != nil {
		return nil, err
	}

	node := &DependencyNode{
		Name:      root,
		Record:    rec,
		Installed: reg.IsInstalled(root),
	}
	return newInstallPlan(node, []string{root}, idx, reg)
}

func newInstallPlan(tree *DependencyNode, order []string, idx Lookuper, reg LocalRegistry) (*InstallPlan, error) {
	toInstall, installed := PlanInstall(order, reg)

	plan := &InstallPlan{
		Root:             tree,
		Order:            order,
		AlreadyInstalled: installed,
	}
	for _, name := range toInstall {
		rec, err := idx.Lookup(name)
		if err != nil {
			return nil, err
		}
		plan.ToInstall = append(plan.ToInstall, rec)
	}
	return plan, nil
}

// PrintPlan prints the dependency tree and the install summary.
func PrintPlan(w io.Writer, plan *InstallPlan) {
	fmt.Fprintln(w, "Resolving dependencies...")
	fmt.Fprintln(w)

	PrintTree(w, plan.Root, "", true)
	fmt.Fprintln(w)

	for _, name := range plan.AlreadyInstalled {
		fmt.Fprintf(w, "Package '%s' is already installed\n", name)
	}

	if plan.NothingToDo() {
		return
	}

	if len(plan.AlreadyInstalled) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Installation plan:")
	for _, rec := range plan.ToInstall {
		fmt.Fprintf(w, "  - %s v%s\n", rec.Name, rec.Version)
	}
	fmt.Fprintf(w, "  (%d %s to install)\n", len(plan.ToInstall), pluralize(len(plan.ToInstall), "package"))
	fmt.Fprintln(w)
}

// pluralize returns noun with an "s" unless n is 1.
func pluralize(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
