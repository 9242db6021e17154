// Package registry is mip's dependency engine. It holds the catalog index and
// a view of the installed package store, resolves a package into an ordered
// install plan, finds the dependents of a package for uninstall planning, and
// drives the store that materialises and removes packages.
//
// Resolution and planning are pure in-memory computations over the Lookuper
// and LocalRegistry interfaces. Only the Installer and Remover collaborators
// touch the network or the filesystem, and they are called strictly in plan
// order.
package registry
