// Package platform knows about the machine mip runs on: the architecture tag
// used to pick package variants from the index, and filesystem operations
// whose behaviour differs on Windows.
package platform
