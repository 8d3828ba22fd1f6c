package ignore

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultAllowHidden lists dot-prefixed names that are still indexed.
var DefaultAllowHidden = []string{".github"}

type rule struct {
	pattern string
	glob    glob.Glob
}

// Matcher decides which directory entries the indexer skips.
//
// An entry is excluded when its name equals a pattern, starts with a pattern,
// or matches a pattern as a glob. Patterns containing "/" are matched against
// the slash-separated path relative to the repository root instead. Names
// beginning with "." are excluded unless allow-listed; an allow-listed name
// is exempt from prefix matches, so ".git" does not hide ".github".
type Matcher struct {
	rules       []rule
	allowHidden map[string]struct{}
}

// NewMatcher builds a matcher from exclusion patterns and the hidden-name
// allow-list. Blank patterns and patterns that fail to compile as globs are
// still applied as literal names.
func NewMatcher(patterns []string, allowHidden []string) *Matcher {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		if parsed, ok := parseRule(p); ok {
			rules = append(rules, parsed)
		}
	}

	allow := make(map[string]struct{}, len(allowHidden))
	for _, name := range allowHidden {
		if name = strings.TrimSpace(name); name != "" {
			allow[name] = struct{}{}
		}
	}

	return &Matcher{rules: rules, allowHidden: allow}
}

// Excluded reports whether the entry called name at relPath should be skipped.
func (m *Matcher) Excluded(name, relPath string) bool {
	allowed := false
	if strings.HasPrefix(name, ".") {
		if _, ok := m.allowHidden[name]; !ok {
			return true
		}
		allowed = true
	}

	relPath = normalizePath(relPath)
	for _, r := range m.rules {
		if r.matches(name, relPath, allowed) {
			return true
		}
	}
	return false
}

func parseRule(line string) (rule, bool) {
	line = normalizePath(strings.TrimSpace(line))
	if line == "" {
		return rule{}, false
	}

	parsed := rule{pattern: line}
	if strings.ContainsAny(line, "*?[{") {
		if g, err := glob.Compile(line, '/'); err == nil {
			parsed.glob = g
		}
	}
	return parsed, true
}

func (r rule) matches(name, relPath string, allowed bool) bool {
	if strings.Contains(r.pattern, "/") {
		return r.matchPath(relPath)
	}

	if name == r.pattern || (!allowed && strings.HasPrefix(name, r.pattern)) {
		return true
	}
	return r.glob != nil && r.glob.Match(name)
}

// matchPath tries the pattern against relPath and each of its suffixes so
// "docs/*.md" also excludes "site/docs/intro.md".
func (r rule) matchPath(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		candidate := strings.Join(parts[i:], "/")
		if candidate == r.pattern {
			return true
		}
		if r.glob != nil && r.glob.Match(candidate) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
