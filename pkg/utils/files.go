package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// skippedDirs are never descended into
var skippedDirs = map[string]bool{
	"build":        true,
	".dart_tool":   true,
	"node_modules": true,
}

// HasExtension checks if filename ends with one of exts (case-insensitive)
func HasExtension(filename string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// IsExcluded reports whether rel, a slash separated path relative to the walk
// root, matches any of the doublestar patterns.
func IsExcluded(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, errors.Errorf("matching exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// FindFiles recursively finds all files under root with one of the given
// extensions, skipping hidden and build directories and excluded paths.
// Results are in lexical walk order.
func FindFiles(root string, exts []string, excludes []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if skippedDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			excluded, err := IsExcluded(rel, excludes)
			if err != nil {
				return err
			}
			if excluded {
				return filepath.SkipDir
			}
			return nil
		}

		if !HasExtension(d.Name(), exts) {
			return nil
		}
		excluded, err := IsExcluded(rel, excludes)
		if err != nil {
			return err
		}
		if !excluded {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

// IsDirectory checks if the given path is a directory
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
