// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FindFiles expands the given paths into a flat, de-duplicated list of files
// accepted by match. Directories are walked recursively; a path that does not
// exist is an error, since every path here was named explicitly by the user.
// Files named directly go through match as well, so callers can hand the
// same path list to several format-specific loaders.
func FindFiles(paths []string, match func(path string) bool) ([]string, error) {
	if match == nil {
		panic("fsutil: match must not be nil")
	}

	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		allFiles = append(allFiles, clean)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if match(path) {
				add(path)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && match(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}

// HasExt returns a matcher accepting files with any of the given extensions.
func HasExt(exts ...string) func(string) bool {
	if len(exts) == 0 {
		panic("fsutil: at least one extension is required")
	}
	return func(p string) bool {
		ext := filepath.Ext(p)
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}
