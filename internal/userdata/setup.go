package userdata

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mip-org/mip-package-manager/internal/platform"
)

// matlabFiles holds the MATLAB integration copied into <root>/matlab.
//
//go:embed matlab
var matlabFiles embed.FS

// matlabPackageDir is the MATLAB package folder replaced on every refresh.
const matlabPackageDir = "+mip"

// Setup creates the ~/.mip layout and (re)installs the MATLAB integration.
// It prints progress messages to w and returns the MATLAB integration
// directory the user has to add to their MATLAB path.
func Setup(w io.Writer) (string, error) {
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	packagesRoot, err := GetPackagesRoot()
	if err != nil {
		return "", err
	}
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	matlabRoot, err := GetMatlabRoot()
	if err != nil {
		return "", err
	}

	for _, dir := range []string{root, packagesRoot, cacheDir, matlabRoot} {
		if err := ensureDir(w, dir, DirPermNormal); err != nil {
			return "", err
		}
	}

	if err := writeMatlabIntegration(matlabRoot); err != nil {
		return "", err
	}
	fmt.Fprintf(w, "  [ OK ] MATLAB integration written to %s\n", matlabRoot)

	return matlabRoot, nil
}

// RefreshMatlabIntegration rewrites the MATLAB integration so it always
// matches the running binary. Install and uninstall call it before doing
// any work; failures there are warnings, not errors.
func RefreshMatlabIntegration() error {
	matlabRoot, err := GetMatlabRoot()
	if err != nil {
		return err
	}
	return writeMatlabIntegration(matlabRoot)
}

// writeMatlabIntegration replaces <dest>/+mip and writes every embedded file.
func writeMatlabIntegration(dest string) error {
	if err := os.RemoveAll(filepath.Join(dest, matlabPackageDir)); err != nil {
		return fmt.Errorf("removing old MATLAB package: %w", err)
	}

	return fs.WalkDir(matlabFiles, "matlab", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("matlab", filepath.FromSlash(path))
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, DirPermNormal); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			return nil
		}

		data, err := matlabFiles.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, FilePermNormal); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		return nil
	})
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
