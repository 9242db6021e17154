// Package userdata manages the ~/.mip/ directory layout: the package store
// where each installed package occupies one slot, the MATLAB integration
// directory, and the download cache. It resolves paths (with MIP_* env
// overrides) and performs the one-time setup of the layout.
package userdata
