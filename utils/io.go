package utils

import "os"

// FileExists reports whether path points at an existing
// regular file (directories don't count as loadable VCFs).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
