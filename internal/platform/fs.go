package platform

import (
	"os"
	"runtime"
)

// IsWindows returns true if the current OS is Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if IsWindows() {
		return nil
	}
	return os.Chmod(path, mode)
}
