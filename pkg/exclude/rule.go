// Package exclude implements the ordered exclude/filter rule lists that the
// scanner consults when deciding whether a directory entry should be
// excluded outright (set OnRequestOnly) or merely ignored (routed to the
// Attic).
package exclude

import (
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Syntax identifies how a Rule's pattern should be interpreted.
type Syntax uint8

const (
	// SyntaxGlob interprets the pattern as a doublestar glob, supporting
	// "**" for arbitrary path-depth matches.
	SyntaxGlob Syntax = iota
	// SyntaxRegexp interprets the pattern as an RE2 regular expression.
	SyntaxRegexp
)

// Scope identifies what part of a directory entry's path a Rule is matched
// against.
type Scope uint8

const (
	// ScopeFullPath matches against the entry's full path.
	ScopeFullPath Scope = iota
	// ScopeBaseName matches against only the entry's final path component.
	ScopeBaseName
)

// Rule is a single compiled exclude or filter pattern.
type Rule struct {
	raw    string
	syntax Syntax
	scope  Scope
	regexp *regexp.Regexp
}

// NewRule compiles a new rule from a raw pattern. An empty pattern is
// rejected.
func NewRule(pattern string, syntax Syntax, scope Scope) (*Rule, error) {
	if pattern == "" {
		return nil, errors.New("empty exclude pattern")
	}

	rule := &Rule{raw: pattern, syntax: syntax, scope: scope}

	switch syntax {
	case SyntaxGlob:
		if _, err := doublestar.Match(pattern, "probe"); err != nil {
			return nil, errors.Wrapf(err, "invalid glob pattern %q", pattern)
		}
	case SyntaxRegexp:
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid regular expression %q", pattern)
		}
		rule.regexp = compiled
	default:
		return nil, errors.Errorf("unknown rule syntax %d", syntax)
	}

	return rule, nil
}

// String returns the rule's raw pattern text.
func (r *Rule) String() string {
	return r.raw
}

// Matches reports whether path matches this rule, according to its scope.
func (r *Rule) Matches(path string) bool {
	candidate := path
	if r.scope == ScopeBaseName {
		candidate = filepath.Base(path)
	}

	switch r.syntax {
	case SyntaxRegexp:
		return r.regexp.MatchString(candidate)
	default:
		matched, _ := doublestar.Match(r.raw, candidate)
		return matched
	}
}
