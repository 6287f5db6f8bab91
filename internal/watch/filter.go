// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores never trigger a run: VCS metadata, dependency caches,
// editor swap files and OS metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// filter decides which paths, relative to the watched directory, count.
type filter struct {
	patterns []string
	ignores  []string
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func newFilter(patterns, ignore []string) (*filter, error) {
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(ignore, "ignore"); err != nil {
		return nil, err
	}
	return &filter{
		patterns: slices.Clone(patterns),
		ignores:  slices.Concat(defaultIgnores, ignore),
	}, nil
}

// match reports whether a change to rel should trigger a run.
func (f *filter) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if matchAny(f.ignores, rel) {
		return false
	}
	return len(f.patterns) == 0 || matchAny(f.patterns, rel)
}

// ignoredDir reports whether the directory rel should not be descended into.
func (f *filter) ignoredDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchAny(f.ignores, rel) || matchAny(f.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
