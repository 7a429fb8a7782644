package fileutil

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SafeName lowercases s and collapses anything outside [a-z0-9_-] into a
// single underscore, producing a filesystem-safe path component. App and
// task names must survive as directory names on every platform.
func SafeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed"
	}
	return s
}

// TaskOutputDir builds the per-task output directory under base. Repeated
// runs with the same app/task pair resolve to the same directory, so prior
// captures at that path are overwritten.
func TaskOutputDir(base, appName, taskName string) string {
	return filepath.Join(base, SafeName(appName), SafeName(taskName))
}
