// Package fetch retrieves remote resources for mip: the package index and
// .mhl package archives. It also unpacks .mhl archives, which are zip files,
// into a directory.
package fetch
