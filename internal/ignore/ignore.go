// Package ignore decides which workspace paths the scanner must not descend
// into.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// AlwaysSkipped is pruned regardless of configuration.
const AlwaysSkipped = "node_modules"

// Matcher is the ignore predicate. Paths are given relative to the parent of
// the workspace root, so the first segment is the workspace directory name.
type Matcher struct {
	patterns []string
}

// New builds a Matcher from user-configured patterns. Empty patterns are dropped.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, filepath.ToSlash(p))
	}
	return m
}

// Patterns returns the user patterns the matcher was built with.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether rel should be skipped, subtree included.
//
// A user pattern matches when it glob-matches the whole path, when the path
// starts with it, or when the path contains it. The last two accept bare
// directory names such as "dist".
func (m *Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if strings.Contains(rel, AlwaysSkipped) {
		return true
	}
	for _, p := range m.patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if strings.HasPrefix(rel, p) || strings.Contains(rel, p) {
			return true
		}
		// Globs like "*.log" also apply to the last path segment.
		if ok, err := doublestar.Match(p, baseName(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

func baseName(rel string) string {
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		return rel[i+1:]
	}
	return rel
}
