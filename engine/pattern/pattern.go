// Package pattern compiles the textual references used in override documents
// into predicates over entity names.
//
// Grammar, applied in this fixed order: a leading '!' inverts the final
// result; a leading '#' selects a named group and matches membership; a
// leading '*' makes a suffix match, a trailing '*' a prefix match, both a
// substring match, neither an exact match.
package pattern

import (
	"fmt"
	"strings"
)

// Matcher reports whether a name matches a compiled pattern.
type Matcher func(name string) bool

// Lookup resolves a named group (referenced as "#Name") to its members.
type Lookup func(group string) ([]string, bool)

// UnknownGroupError reports a '#' reference to a group that does not exist.
type UnknownGroupError struct {
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown group %q", "#"+e.Group)
}

// IsPattern reports whether s must be interpreted as a pattern rather than a
// literal name. This rule is part of the document format: a reference
// beginning with '!', '*', or '#', or ending with '*', is never a literal.
func IsPattern(s string) bool {
	return strings.HasPrefix(s, "!") || strings.HasPrefix(s, "*") ||
		strings.HasPrefix(s, "#") || strings.HasSuffix(s, "*")
}

// IsOutputOnly reports whether a document key is output-only. Such keys are
// stripped before a document is treated as an input override.
func IsOutputOnly(s string) bool {
	return strings.HasPrefix(s, ":")
}

// Compile turns a single pattern into a Matcher. Patterns are compiled on
// every call; callers that need a memoized group feed it through groups.
func Compile(pat string, groups Lookup) (Matcher, error) {
	invert := strings.HasPrefix(pat, "!")
	if invert {
		pat = pat[1:]
	}

	if strings.HasPrefix(pat, "#") {
		name := pat[1:]
		members, ok := groups(name)
		if !ok {
			return nil, &UnknownGroupError{Group: name}
		}
		return func(s string) bool {
			return invert != contains(members, s)
		}, nil
	}

	wildcardBegin := strings.HasPrefix(pat, "*")
	if wildcardBegin {
		pat = pat[1:]
	}
	wildcardEnd := strings.HasSuffix(pat, "*")
	if wildcardEnd {
		pat = pat[:len(pat)-1]
	}

	p := pat
	switch {
	case wildcardBegin && wildcardEnd:
		return func(s string) bool { return invert != strings.Contains(s, p) }, nil
	case wildcardBegin:
		return func(s string) bool { return invert != strings.HasSuffix(s, p) }, nil
	case wildcardEnd:
		return func(s string) bool { return invert != strings.HasPrefix(s, p) }, nil
	default:
		return func(s string) bool { return invert != (s == p) }, nil
	}
}

// CompileList compiles an ordered list of patterns into the logical OR of
// each element's Matcher. Inversion applies per element, not distributed.
func CompileList(pats []string, groups Lookup) (Matcher, error) {
	matchers := make([]Matcher, 0, len(pats))
	for _, pat := range pats {
		m, err := Compile(pat, groups)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return func(s string) bool {
		for _, m := range matchers {
			if m(s) {
				return true
			}
		}
		return false
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
