package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// cacheFile is the cached copy of the last remote index.
	cacheFile = "index.json"

	// freshnessFile records when the cache was written and where from.
	freshnessFile = ".index-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour
)

// writeCache stores data as the cached index, atomically.
func writeCache(dir, source string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	target := filepath.Join(dir, cacheFile)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing index cache: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalizing index cache: %w", err)
	}

	return WriteFreshnessMarker(dir, source)
}

// WriteFreshnessMarker writes the current Unix timestamp and the index source
// to the freshness file.
func WriteFreshnessMarker(dir, source string) error {
	return writeMarker(dir, time.Now(), source)
}

func writeMarker(dir string, at time.Time, source string) error {
	markerPath := filepath.Join(dir, freshnessFile)
	content := strconv.FormatInt(at.Unix(), 10) + "\n" + source + "\n"
	return os.WriteFile(markerPath, []byte(content), 0644)
}

// ReadFreshnessMarker reads the timestamp and source from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(dir string) (time.Time, string) {
	data, err := os.ReadFile(filepath.Join(dir, freshnessFile))
	if err != nil {
		return time.Time{}, ""
	}

	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	ts, err := strconv.ParseInt(strings.TrimSpace(lines[0]), 10, 64)
	if err != nil {
		return time.Time{}, ""
	}

	source := ""
	if len(lines) == 2 {
		source = strings.TrimSpace(lines[1])
	}
	return time.Unix(ts, 0), source
}

// IsStale returns true if the cache was last written more than maxAge ago.
// Returns true if the freshness marker doesn't exist.
func IsStale(dir string, maxAge time.Duration) bool {
	lastUpdated, _ := ReadFreshnessMarker(dir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}
