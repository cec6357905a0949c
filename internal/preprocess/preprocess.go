// Package preprocess normalizes comment text before it is split, mapped and
// vectorized. Every stage of the pipeline must see text normalized the same
// way, otherwise sentence mapping and vocabulary lookups silently miss.
package preprocess

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order. The replacement strings use ${n} so that a group
// reference followed by letters is not read as a named group.
var rules = []rule{
	{regexp.MustCompile(`\r\n|\r`), "\n"},                 // line endings are \n
	{regexp.MustCompile(`[^a-z0-9,.@#&^%!? \n]`), " "},     // reduce alphabet
	{regexp.MustCompile(`([0-9]+)\.([0-9]+)`), "${1}${2}"}, // join floats
	{regexp.MustCompile(` +`), " "},                       // single spaces
	{regexp.MustCompile(`^[ \n]+`), ""},                   // no leading whitespace
	{regexp.MustCompile(`[ \n]+$`), ""},                   // no trailing whitespace
	{regexp.MustCompile(`\n `), "\n"},                     // lines do not start with spaces
	{regexp.MustCompile(` \n`), "\n"},                     // lines do not end with spaces
	{regexp.MustCompile(`\n(\n+)`), "\n\n"},               // at most one blank line
	{regexp.MustCompile(`(\n|^)[ .!?]+`), "${1}"},         // lines start with a non-separator
	{regexp.MustCompile(`(^|[^a-z0-9])e\.? ?g\.? ?($|[^.a-z0-9])`), "${1}eg${2}"},
	{regexp.MustCompile(`(^|[^a-z0-9])i\.? ?e\.? ?($|[^.a-z0-9])`), "${1}ie${2}"},
	{regexp.MustCompile(`(^|[^a-z0-9])etc\.? ?($|[^.a-z0-9])`), "${1}etc${2}"},
}

// Normalize lowercases s and reduces it to the alphabet [a-z0-9,.@#&^%!? \n]
// with single spaces, at most one blank line between paragraphs and the
// abbreviations e.g., i.e. and etc. collapsed into words.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}

// Comment strips documentation markup and normalizes the result.
func Comment(s string) string {
	return Normalize(StripMarkup(s))
}
