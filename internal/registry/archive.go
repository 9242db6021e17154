package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mip-org/mip-package-manager/internal/fetch"
	"github.com/mip-org/mip-package-manager/internal/manifest"
)

// IsArchiveSource reports whether an install argument names a .mhl archive
// rather than a package in the index.
func IsArchiveSource(arg string) bool {
	return strings.HasSuffix(strings.ToLower(arg), ".mhl")
}

// Archive is an extracted .mhl package waiting to be installed.
type Archive struct {
	Record *PackageRecord
	Dir    string // extracted contents

	tmp string
}

// OpenArchive fetches source if it is a URL, extracts it into a temporary
// directory and reads its mip.json. The manifest must name the package.
// Call Close to remove the temporary files.
func OpenArchive(ctx context.Context, client *fetch.Client, source string) (*Archive, error) {
	if client == nil {
		client = fetch.New()
	}

	archivePath, cleanup, err := fetchArchive(ctx, client, source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tmp, err := os.MkdirTemp("", "mip-archive-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction directory: %w", err)
	}
	a := &Archive{Dir: filepath.Join(tmp, "package"), tmp: tmp}

	if err := fetch.ExtractZip(archivePath, a.Dir); err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid .mhl file %s: %w", source, err)
	}

	m, err := manifest.ParseLocalFile(filepath.Join(a.Dir, manifest.LocalManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.Close()
		return nil, fmt.Errorf("%w: %s is missing %s", ErrManifestMalformed, source, manifest.LocalManifestFile)
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("%w: %w", ErrManifestMalformed, err)
	case m.Package == "":
		a.Close()
		return nil, fmt.Errorf("%w: %s in %s must contain a 'package' field", ErrManifestMalformed, manifest.LocalManifestFile, source)
	}

	a.Record = &PackageRecord{
		Name:         m.Package,
		Version:      m.Version,
		Locator:      source,
		Dependencies: m.Dependencies,
	}
	return a, nil
}

// Close removes the extracted files.
func (a *Archive) Close() error {
	return os.RemoveAll(a.tmp)
}

// Installer returns an Installer that copies the archive's own package from
// the extracted directory and installs everything else through store.
func (a *Archive) Installer(store *Store) Installer {
	return &archiveInstaller{archive: a, store: store}
}

type archiveInstaller struct {
	archive *Archive
	store   *Store
}

func (ai *archiveInstaller) InstallPackage(ctx context.Context, rec *PackageRecord) error {
	if rec.Name == ai.archive.Record.Name {
		return ai.store.InstallFromDir(rec.Name, ai.archive.Dir)
	}
	return ai.store.InstallPackage(ctx, rec)
}
