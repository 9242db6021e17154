package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mip-org/mip-package-manager/internal/branding"
	"github.com/mip-org/mip-package-manager/internal/config"
	"github.com/mip-org/mip-package-manager/internal/fetch"
	"github.com/mip-org/mip-package-manager/internal/manifest"
	"github.com/mip-org/mip-package-manager/internal/platform"
	"github.com/mip-org/mip-package-manager/internal/registry"
)

// IndexURL returns the package index location, checking (in order):
// 1. MIP_INDEX_URL env var
// 2. config key "index_url"
// 3. branding.IndexURL() (from branding.yaml)
func IndexURL() string {
	if v := os.Getenv(branding.EnvVar("INDEX_URL")); v != "" {
		return v
	}
	if v := config.Get(config.KeyIndexURL); v != "" {
		return v
	}
	return branding.IndexURL()
}

// Architecture returns the architecture tag used for variant selection:
// config key "architecture" (or MIP_ARCHITECTURE) if set, otherwise the tag
// of the running machine.
func Architecture() (string, error) {
	if v := os.Getenv(branding.EnvVar("ARCHITECTURE")); v != "" {
		return v, nil
	}
	if v := config.Get(config.KeyArchitecture); v != "" {
		return v, nil
	}
	return platform.ArchitectureTag()
}

// Loader fetches and decodes package indexes.
type Loader struct {
	client   *fetch.Client
	cacheDir string
	arch     string
	offline  bool
	maxAge   time.Duration
	logger   *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithClient sets the HTTP client used for remote indexes.
func WithClient(c *fetch.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithCacheDir enables the index cache in dir.
func WithCacheDir(dir string) Option {
	return func(l *Loader) {
		l.cacheDir = dir
	}
}

// WithArchitecture overrides the architecture tag used to pick variants.
func WithArchitecture(arch string) Option {
	return func(l *Loader) {
		l.arch = arch
	}
}

// WithOffline makes Load read the cached index instead of the source.
func WithOffline(offline bool) Option {
	return func(l *Loader) {
		l.offline = offline
	}
}

// WithLogger sets the logger for cache and variant diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxAge: DefaultMaxAge}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = fetch.New()
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	return l
}

// Load is shorthand for NewLoader(opts...).Load(ctx, source).
func Load(ctx context.Context, source string, opts ...Option) (*registry.Index, error) {
	return NewLoader(opts...).Load(ctx, source)
}

// Load reads the index at source, an http(s) URL or a local path.
// Fetch and decode failures wrap registry.ErrManifestUnavailable; schema
// violations wrap registry.ErrManifestMalformed.
func (l *Loader) Load(ctx context.Context, source string) (*registry.Index, error) {
	arch := l.arch
	if arch == "" {
		var err error
		if arch, err = Architecture(); err != nil {
			return nil, err
		}
	}

	data, base, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	parsed, err := manifest.ParseIndex(data)
	if err != nil {
		var schemaErr *manifest.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, fmt.Errorf("%w: %w", registry.ErrManifestMalformed, err)
		}
		return nil, fmt.Errorf("%w: %w", registry.ErrManifestUnavailable, err)
	}

	if !l.offline && fetch.IsURL(source) && l.cacheDir != "" {
		if err := writeCache(l.cacheDir, source, data); err != nil {
			l.logger.Warn("could not cache package index", "err", err)
		}
	}

	records, err := l.records(parsed, base, arch)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded package index", "source", base, "packages", len(records), "architecture", arch)
	return registry.NewIndex(records)
}

// read returns the raw index and the location relative filenames resolve
// against.
func (l *Loader) read(ctx context.Context, source string) ([]byte, string, error) {
	if l.offline {
		return l.readCache()
	}

	if fetch.IsURL(source) {
		data, err := l.client.Get(ctx, source)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", registry.ErrManifestUnavailable, err)
		}
		return data, source, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", registry.ErrManifestUnavailable, err)
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	return data, abs, nil
}

func (l *Loader) readCache() ([]byte, string, error) {
	if l.cacheDir == "" {
		return nil, "", fmt.Errorf("%w: offline mode needs an index cache", registry.ErrManifestUnavailable)
	}

	data, err := os.ReadFile(filepath.Join(l.cacheDir, cacheFile))
	if err != nil {
		return nil, "", fmt.Errorf("%w: no cached index (run once without --offline): %w", registry.ErrManifestUnavailable, err)
	}

	updated, source := ReadFreshnessMarker(l.cacheDir)
	if IsStale(l.cacheDir, l.maxAge) {
		age := "unknown"
		if !updated.IsZero() {
			age = time.Since(updated).Round(time.Hour).String()
		}
		l.logger.Warn("cached package index is stale", "age", age)
	}
	return data, source, nil
}

// records picks one variant per package name, in order of first appearance.
func (l *Loader) records(idx *manifest.Index, base, arch string) ([]registry.PackageRecord, error) {
	var order []string
	groups := make(map[string][]manifest.IndexEntry)
	for _, e := range idx.Packages {
		if _, ok := groups[e.Name]; !ok {
			order = append(order, e.Name)
		}
		groups[e.Name] = append(groups[e.Name], e)
	}

	records := make([]registry.PackageRecord, 0, len(order))
	for _, name := range order {
		entries := groups[name]
		variants := make([]platform.Variant, len(entries))
		for i, e := range entries {
			variants[i] = platform.Variant{Architecture: e.Architecture, Version: e.Version}
		}

		best, ok := platform.SelectVariant(variants, arch)
		if !ok {
			l.logger.Debug("no compatible variant", "package", name, "architecture", arch)
			continue
		}
		e := entries[best]

		locator, err := resolveLocator(base, e.Locator())
		if err != nil {
			return nil, fmt.Errorf("%w: package %s: %w", registry.ErrManifestMalformed, name, err)
		}

		records = append(records, registry.PackageRecord{
			Name:         e.Name,
			Version:      e.Version,
			Locator:      locator,
			Dependencies: e.Dependencies,
			Architecture: variants[best].Architecture,
		})
	}
	return records, nil
}

// resolveLocator makes loc absolute relative to base, the index location.
func resolveLocator(base, loc string) (string, error) {
	if fetch.IsURL(loc) {
		return loc, nil
	}

	if fetch.IsURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		ref, err := url.Parse(strings.ReplaceAll(loc, `\`, "/"))
		if err != nil {
			return "", err
		}
		return b.ResolveReference(ref).String(), nil
	}

	if filepath.IsAbs(loc) || base == "" {
		return loc, nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(loc)), nil
}
