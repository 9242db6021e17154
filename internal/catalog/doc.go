// Package catalog loads the package index a channel publishes and turns it
// into a registry.Index for the current machine. It picks the best
// architecture variant of every package, resolves relative archive locations
// against the index location, and keeps a copy of the last remote index so
// that mip can work offline.
package catalog
