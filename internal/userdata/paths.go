package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mip-org/mip-package-manager/internal/branding"
)

// Directory and file name constants for the ~/.mip layout.
const (
	PackagesDir = "packages"
	MatlabDir   = "matlab"
	CacheDir    = "cache"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetRoot returns the mip home directory.
// It checks the MIP_ROOT environment variable first, then falls back to ~/.mip.
func GetRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("ROOT")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetPackagesRoot returns the package store directory.
// It checks MIP_PACKAGES first, then falls back to <root>/packages.
func GetPackagesRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("PACKAGES")); v != "" {
		return v, nil
	}
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, PackagesDir), nil
}

// GetMatlabRoot returns the directory holding the MATLAB integration
// (<root>/matlab), which users add to their MATLAB path.
func GetMatlabRoot() (string, error) {
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, MatlabDir), nil
}

// GetCacheDir returns the directory used for the cached package index.
func GetCacheDir() (string, error) {
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, CacheDir), nil
}
