package registry

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestFindDependents(t *testing.T) {
	reg := NewMemRegistry(
		installed("core"),
		installed("linalg", "core"),
		installed("solver", "linalg"),
		installed("plot", "core"),
		installed("unrelated"),
	)

	got := FindDependents("core", reg)
	want := []string{"linalg", "solver", "plot"}
	if !slices.Equal(got, want) {
		t.Errorf("FindDependents = %v, want %v", got, want)
	}

	if got := FindDependents("unrelated", reg); len(got) != 0 {
		t.Errorf("expected no dependents, got %v", got)
	}
}

func TestFindDependents_CyclicOnDisk(t *testing.T) {
	reg := NewMemRegistry(
		installed("A", "B"),
		installed("B", "A"),
		installed("C", "A"),
	)

	// A shows up again through B; the planner drops it.
	got := FindDependents("A", reg)
	if !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("FindDependents = %v, want [B A C]", got)
	}
	if order := PlanUninstall("A", got); !slices.Equal(order, []string{"B", "C", "A"}) {
		t.Errorf("PlanUninstall = %v, want [B C A]", order)
	}
}

func TestPlanUninstall_Dedup(t *testing.T) {
	got := PlanUninstall("T", []string{"X", "Y", "X", "Z", "Y"})
	want := []string{"X", "Y", "Z", "T"}
	if !slices.Equal(got, want) {
		t.Errorf("PlanUninstall = %v, want %v", got, want)
	}

	if got := PlanUninstall("T", nil); !slices.Equal(got, []string{"T"}) {
		t.Errorf("PlanUninstall with no dependents = %v, want [T]", got)
	}
}

func TestBuildUninstallPlan_LeavesNothingBroken(t *testing.T) {
	reg := NewMemRegistry(
		installed("core"),
		installed("linalg", "core"),
		installed("solver", "linalg"),
		installed("plot", "core"),
		installed("app", "solver", "plot"),
		installed("unrelated"),
	)

	plan, err := BuildUninstallPlan("core", reg)
	if err != nil {
		t.Fatalf("BuildUninstallPlan: %v", err)
	}
	if plan.Order[len(plan.Order)-1] != "core" {
		t.Errorf("target should be last: %v", plan.Order)
	}

	// Every package appears once.
	seen := map[string]bool{}
	for _, name := range plan.Order {
		if seen[name] {
			t.Errorf("%s appears twice in %v", name, plan.Order)
		}
		seen[name] = true
	}

	for _, name := range plan.Order {
		reg.Remove(name)
	}
	for _, name := range reg.InstalledPackages() {
		for _, dep := range reg.DependenciesOf(name) {
			if !reg.IsInstalled(dep) {
				t.Errorf("%s left with missing dependency %s", name, dep)
			}
		}
	}
	if !reg.IsInstalled("unrelated") {
		t.Error("unrelated package was removed")
	}
}

func TestBuildUninstallPlan_SchemaViolatingDependents(t *testing.T) {
	root := t.TempDir()
	writeInstalled(t, root, "core", `{"dependencies": []}`)
	writeInstalled(t, root, "numver", `{"version": 2, "dependencies": ["core"]}`)
	writeInstalled(t, root, "badsyms", `{"dependencies": ["core"], "exposed_symbols": [1]}`)
	writeInstalled(t, root, "emptypkg", `{"package": "", "dependencies": ["core"]}`)

	plan, err := BuildUninstallPlan("core", NewDirRegistry(root, quietLogger()))
	if err != nil {
		t.Fatalf("BuildUninstallPlan: %v", err)
	}
	want := []string{"badsyms", "emptypkg", "numver", "core"}
	if !slices.Equal(plan.Order, want) {
		t.Errorf("Order = %v, want %v", plan.Order, want)
	}
}

// countingRegistry counts manifest reads.
type countingRegistry struct {
	LocalRegistry
	reads map[string]int
}

func (c *countingRegistry) DependenciesOf(name string) []string {
	c.reads[name]++
	return c.LocalRegistry.DependenciesOf(name)
}

func TestFindDependents_ReadsEachManifestOnce(t *testing.T) {
	reg := &countingRegistry{
		LocalRegistry: NewMemRegistry(
			installed("core"),
			installed("linalg", "core"),
			installed("solver", "linalg"),
			installed("app", "solver"),
			installed("unrelated"),
		),
		reads: make(map[string]int),
	}

	if got := FindDependents("core", reg); !slices.Equal(got, []string{"linalg", "solver", "app"}) {
		t.Errorf("FindDependents = %v", got)
	}
	for name, n := range reg.reads {
		if n != 1 {
			t.Errorf("DependenciesOf(%s) called %d times, want 1", name, n)
		}
	}
}

func TestBuildUninstallPlan_NotInstalled(t *testing.T) {
	_, err := BuildUninstallPlan("ghost", NewMemRegistry())
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestPrintUninstallPlan(t *testing.T) {
	plan := &UninstallPlan{
		Target:     "core",
		Dependents: []string{"linalg"},
		Order:      []string{"linalg", "core"},
	}

	var buf bytes.Buffer
	PrintUninstallPlan(&buf, plan)
	out := buf.String()
	for _, want := range []string{
		"The following packages will be uninstalled:",
		"  - linalg (depends on core)",
		"  - core\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintUninstallPlan(&buf, &UninstallPlan{Target: "core", Order: []string{"core"}})
	if buf.Len() != 0 {
		t.Errorf("single-package plan should print nothing, got %q", buf.String())
	}
}
