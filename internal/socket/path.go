package socket

import (
	"os"
	"path/filepath"
	"strconv"
)

// SplitSuffix splits path into everything before the numeric suffix, the
// suffix itself and the extension:
//
//	"/tmp/test.sock"  -> ("/tmp/test", 0, ".sock")
//	"/tmp/test12.sock" -> ("/tmp/test", 12, ".sock")
//
// Only digits in the final path element count. A path without a suffix
// reports index 0.
func SplitSuffix(path string) (prefix string, index int, ext string) {
	dirEnd := len(path)
	for dirEnd > 0 && !os.IsPathSeparator(path[dirEnd-1]) {
		dirEnd--
	}
	dir, base := path[:dirEnd], path[dirEnd:]

	ext = filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	digits := len(stem)
	for digits > 0 && stem[digits-1] >= '0' && stem[digits-1] <= '9' {
		digits--
	}
	if digits == len(stem) {
		return dir + stem, 0, ext
	}

	n, err := strconv.Atoi(stem[digits:])
	if err != nil {
		// Too many digits to be an index; treat them as part of the name.
		return dir + stem, 0, ext
	}
	return dir + stem[:digits], n, ext
}

// WithSuffix returns path with its numeric suffix replaced by index.
// Index 0 removes the suffix.
func WithSuffix(path string, index int) string {
	prefix, _, ext := SplitSuffix(path)
	if index == 0 {
		return prefix + ext
	}
	return prefix + strconv.Itoa(index) + ext
}

// NextPath returns the candidate after path: its numeric suffix plus one.
func NextPath(path string) string {
	_, index, _ := SplitSuffix(path)
	return WithSuffix(path, index+1)
}

// DefaultPath is the base path used when the caller gives none.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "portfinder.sock")
}
