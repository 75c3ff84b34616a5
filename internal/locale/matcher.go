// Package locale holds the locale-variant label sets used to find semantically
// equivalent controls and text markers on pages whose language is not known in
// advance. Adding a language means adding literals here; control flow elsewhere
// does not change.
package locale

import (
	"strings"
	"unicode"
)

// Labeled is anything carrying a visible text and an accessible name
type Labeled interface {
	Text() string
	AriaLabel() string
}

// Matcher is an ordered list of literal label alternatives for one semantic
// control. Labels earlier in the list win over later ones.
type Matcher struct {
	Name   string
	Labels []string
	// MatchAria also compares labels against the accessible name
	MatchAria bool
}

// MatchLabel returns the first label of m contained in the control's text (or
// accessible name), compared case-insensitively with collapsed whitespace.
func (m Matcher) MatchLabel(c Labeled) (string, bool) {
	text := fold(c.Text())
	aria := ""
	if m.MatchAria {
		aria = fold(c.AriaLabel())
	}
	for _, label := range m.Labels {
		l := fold(label)
		if l == "" {
			continue
		}
		if strings.Contains(text, l) || (aria != "" && strings.Contains(aria, l)) {
			return label, true
		}
	}
	return "", false
}

// Matches reports whether any label of m matches the control
func (m Matcher) Matches(c Labeled) bool {
	_, ok := m.MatchLabel(c)
	return ok
}

// Resolve walks the labels in order and returns the first candidate matching
// the earliest label, together with that label. keep filters candidates and may
// be nil.
func Resolve[T Labeled](m Matcher, candidates []T, keep func(T) bool) (T, string, bool) {
	var zero T
	for _, label := range m.Labels {
		single := Matcher{Name: m.Name, Labels: []string{label}, MatchAria: m.MatchAria}
		for _, c := range candidates {
			if keep != nil && !keep(c) {
				continue
			}
			if single.Matches(c) {
				return c, label, true
			}
		}
	}
	return zero, "", false
}

// Any reports whether any candidate matches m, ignoring label order
func Any[T Labeled](m Matcher, candidates []T) bool {
	for _, c := range candidates {
		if m.Matches(c) {
			return true
		}
	}
	return false
}

// fold lowercases s and collapses whitespace runs to one space
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
