// Package manifest parses and validates the two JSON documents mip reads:
// the package index (index.json) published by a channel, and the per-package
// mip.json found in every installed package directory.
package manifest
