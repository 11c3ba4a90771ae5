// Package placeholder finds and classifies substitution tokens embedded in
// presentation text.
package placeholder

import (
	"regexp"
	"strings"
)

// Pattern matches one placeholder token: "<%" + non-greedy content + "%>".
// The match is case-sensitive and may span line breaks.
var Pattern = regexp.MustCompile(`(?s)<%.*?%>`)

// Kind is the closed set of substitution kinds a token can resolve to.
type Kind int

const (
	// Text replaces the token in place with a scalar value.
	Text Kind = iota
	// Chart replaces the whole shape with a linked chart.
	Chart
	// Table replaces the whole shape with a styled table.
	Table
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Chart:
		return "chart"
	case Table:
		return "table"
	default:
		return "text"
	}
}

// Classify decides the substitution kind of a token. A token containing the
// literal substring "chart" between the delimiters is a chart token, one
// containing "table" is a table token, anything else is plain text. Chart
// wins when both substrings appear. Classification is independent of
// whether the token resolves against a registry.
func Classify(token string) Kind {
	body := strings.TrimSuffix(strings.TrimPrefix(token, "<%"), "%>")
	switch {
	case strings.Contains(body, "chart"):
		return Chart
	case strings.Contains(body, "table"):
		return Table
	default:
		return Text
	}
}

// Find returns every token occurrence in s, in order. Repeated tokens are
// returned once per occurrence, not de-duplicated.
func Find(s string) []string {
	return Pattern.FindAllString(s, -1)
}

// IsToken reports whether s as a whole is a single placeholder token.
func IsToken(s string) bool {
	m := Pattern.FindString(s)
	return m == s && m != ""
}
