package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// AnyArchitecture marks a package variant that runs everywhere.
const AnyArchitecture = "any"

// ArchitectureTag returns the index architecture tag for the running binary,
// e.g. "linux_x86_64", "macos_arm64" or "windows_x86_64".
func ArchitectureTag() (string, error) {
	return architectureTag(runtime.GOOS, runtime.GOARCH)
}

func architectureTag(goos, goarch string) (string, error) {
	var machine string
	switch goarch {
	case "amd64":
		machine = "x86_64"
	case "arm64":
		machine = "arm64"
	default:
		return "", fmt.Errorf("unsupported architecture: %s on %s", goarch, goos)
	}

	switch goos {
	case "linux":
		return "linux_" + machine, nil
	case "darwin":
		return "macos_" + machine, nil
	case "windows":
		return "windows_" + machine, nil
	default:
		return goos + "_" + machine, nil
	}
}

// Variant is the part of an index entry that variant selection looks at.
// An empty Architecture means the variant runs on any architecture.
type Variant struct {
	Architecture string
	Version      string
}

// Compatible reports whether the variant can be installed on arch.
func (v Variant) Compatible(arch string) bool {
	a := v.arch()
	return a == AnyArchitecture || a == arch
}

func (v Variant) arch() string {
	if v.Architecture == "" {
		return AnyArchitecture
	}
	return v.Architecture
}

// SelectVariant picks the best variant for arch and returns its index.
// Exact architecture matches beat "any"; among equally specific variants the
// highest semantic version wins, and unparseable versions lose to parseable
// ones. Ties keep the earliest variant. ok is false if nothing is compatible.
func SelectVariant(variants []Variant, arch string) (best int, ok bool) {
	best = -1
	for i, v := range variants {
		if !v.Compatible(arch) {
			continue
		}
		if best == -1 || better(v, variants[best], arch) {
			best = i
		}
	}
	return best, best != -1
}

// better reports whether candidate should replace current.
func better(candidate, current Variant, arch string) bool {
	candExact := candidate.arch() == arch
	curExact := current.arch() == arch
	if candExact != curExact {
		return candExact
	}
	return CompareVersions(candidate.Version, current.Version) > 0
}

// CompareVersions compares two version strings using semver, tolerating a
// leading "v". A parseable version is greater than an unparseable one; two
// unparseable versions compare equal.
func CompareVersions(a, b string) int {
	av, aErr := semver.NewVersion(strings.TrimPrefix(a, "v"))
	bv, bErr := semver.NewVersion(strings.TrimPrefix(b, "v"))
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	}
	return av.Compare(bv)
}
