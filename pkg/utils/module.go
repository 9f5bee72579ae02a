package utils

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const pubspecFile = "pubspec.yaml"

type pubspec struct {
	Name string `yaml:"name"`
}

// GetProjectName returns the package name from the nearest pubspec.yaml at or
// above path. It returns an empty string when none is found.
func GetProjectName(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	maxIterations := 20 // Prevent infinite loop
	for i := 0; i < maxIterations; i++ {
		if content, err := os.ReadFile(filepath.Join(dir, pubspecFile)); err == nil {
			var spec pubspec
			if err := yaml.Unmarshal(content, &spec); err == nil && spec.Name != "" {
				return spec.Name
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
