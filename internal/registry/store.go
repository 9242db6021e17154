package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mip-org/mip-package-manager/internal/fetch"
)

// stagingSuffix marks a slot that is still being written.
const stagingSuffix = ".tmp"

// excludedNames are files/directories excluded when copying a package.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
	"__MACOSX":  true,
}

// Installer materialises a package into the store.
type Installer interface {
	InstallPackage(ctx context.Context, rec *PackageRecord) error
}

// Remover deletes a package from the store.
type Remover interface {
	RemovePackage(name string) error
}

// Store is the on-disk package store: one directory per package under root.
// Writes go to "<slot>.tmp" first and are renamed into place, so a failed
// install never leaves a half-written slot and can simply be retried.
type Store struct {
	root   string
	client *fetch.Client
	logger *log.Logger
}

// NewStore returns a store rooted at root that downloads with client.
func NewStore(root string, client *fetch.Client, logger *log.Logger) *Store {
	if client == nil {
		client = fetch.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{root: root, client: client, logger: logger}
}

// Root returns the package store directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) slot(name string) (string, error) {
	if !validSlotName(name) {
		return "", fmt.Errorf("invalid package name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

// InstallPackage fetches the archive named by rec.Locator and extracts it
// into the package's slot.
func (s *Store) InstallPackage(ctx context.Context, rec *PackageRecord) error {
	dst, err := s.slot(rec.Name)
	if err != nil {
		return err
	}

	archivePath, cleanup, err := fetchArchive(ctx, s.client, rec.Locator)
	if err != nil {
		return err
	}
	defer cleanup()

	s.logger.Debug("extracting package", "package", rec.Name, "archive", archivePath)
	return s.stage(dst, func(staging string) error {
		return fetch.ExtractZip(archivePath, staging)
	})
}

// InstallFromDir copies an already extracted package into the slot for name.
// .git, .DS_Store and __MACOSX entries are skipped.
func (s *Store) InstallFromDir(name, dir string) error {
	dst, err := s.slot(name)
	if err != nil {
		return err
	}
	return s.stage(dst, func(staging string) error {
		return copyDir(dir, staging)
	})
}

// stage runs fill against a fresh staging directory and renames the result
// over dst.
func (s *Store) stage(dst string, fill func(staging string) error) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("creating package store: %w", err)
	}

	staging := dst + stagingSuffix
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing stale staging directory %s: %w", staging, err)
	}

	if err := fill(staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			os.RemoveAll(staging)
			return fmt.Errorf("removing existing installation at %s: %w", dst, err)
		}
	}

	if err := os.Rename(staging, dst); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("moving package into place: %w", err)
	}
	return nil
}

// RemovePackage removes an installed package directory.
func (s *Store) RemovePackage(name string) error {
	dir, err := s.slot(name)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, name)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// fetchArchive returns a local path for locator, downloading it first if it
// is a URL. cleanup removes anything fetchArchive created.
func fetchArchive(ctx context.Context, client *fetch.Client, locator string) (archivePath string, cleanup func(), err error) {
	noop := func() {}

	if !fetch.IsURL(locator) {
		info, err := os.Stat(locator)
		if err != nil {
			return "", noop, fmt.Errorf("archive not found: %s", locator)
		}
		if info.IsDir() {
			return "", noop, fmt.Errorf("not a file: %s", locator)
		}
		return locator, noop, nil
	}

	tmp, err := os.MkdirTemp("", "mip-download-*")
	if err != nil {
		return "", noop, fmt.Errorf("creating download directory: %w", err)
	}
	cleanup = func() { os.RemoveAll(tmp) }

	name := path.Base(locator)
	if name == "" || name == "/" || name == "." {
		name = "package.mhl"
	}
	dest := filepath.Join(tmp, name)
	if err := client.Download(ctx, locator, dest); err != nil {
		cleanup()
		return "", noop, err
	}
	return dest, cleanup, nil
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and other special files are not copied.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode())
}
