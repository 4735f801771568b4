package resolver

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// nameFilter selects sub-repositories by name with doublestar globs.
type nameFilter struct {
	include []string
	exclude []string
}

// matches checks if a sub-repository name passes the include/exclude filters.
func (f nameFilter) matches(name string) bool {
	name = strings.ReplaceAll(name, "\\", "/")

	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}

	return false
}
