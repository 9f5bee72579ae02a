package imports

import (
	"strings"
)

// Category is the origin bucket of an import line
type Category int

const (
	SystemCategory Category = iota // dart: libraries
	PackageCategory
	RelativeCategory
	numCategories
)

func (c Category) String() string {
	switch c {
	case SystemCategory:
		return "system"
	case PackageCategory:
		return "package"
	case RelativeCategory:
		return "relative"
	default:
		return "unknown"
	}
}

// Categories lists every category in output order
func Categories() []Category {
	return []Category{SystemCategory, PackageCategory, RelativeCategory}
}

const importKeyword = "import "

// Markers tested, in priority order, against an import line. Both quote
// styles are accepted because imports are reordered before quotes are
// normalised.
var categoryMarkers = []struct {
	category Category
	markers  []string
}{
	{SystemCategory, []string{`'dart:`, `"dart:`}},
	{PackageCategory, []string{`'package:`, `"package:`}},
}

// IsImport reports whether line is an import statement
func IsImport(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), importKeyword)
}

// IsBlank reports whether line holds only whitespace
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Classify returns the bucket an import line belongs to. Every line maps to
// exactly one category; anything that is neither a dart: nor a package:
// import is relative.
func Classify(line string) Category {
	for _, cm := range categoryMarkers {
		for _, m := range cm.markers {
			if strings.Contains(line, m) {
				return cm.category
			}
		}
	}
	return RelativeCategory
}
