package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of the engine. Callers match them
// with errors.Is.
var (
	ErrPackageNotFound         = errors.New("package not found")
	ErrCircularDependency      = errors.New("circular dependency detected")
	ErrManifestUnavailable     = errors.New("package index unavailable")
	ErrManifestMalformed       = errors.New("package manifest malformed")
	ErrLocalManifestUnreadable = errors.New("local manifest unreadable")
	ErrNotInstalled            = errors.New("package not installed")
)

// NotFoundError reports a package missing from the index. RequiredBy is the
// resolution path that led to it, empty for the root.
type NotFoundError struct {
	Name        string
	RequiredBy  []string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %q not found", e.Name)
	if len(e.RequiredBy) > 0 {
		fmt.Fprintf(&b, " (required by %s)", strings.Join(e.RequiredBy, " -> "))
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, "; did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

// Is makes errors.Is(err, ErrPackageNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrPackageNotFound
}

// CycleError reports a dependency cycle. Path is the resolution path from the
// root, ending with the repeated name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Path, " -> "))
}

// Is makes errors.Is(err, ErrCircularDependency) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCircularDependency
}

// StepError reports a collaborator failure part-way through a plan.
// Completed steps are not rolled back.
type StepError struct {
	Op        string // "install" or "uninstall"
	Name      string
	Completed int
	Total     int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
