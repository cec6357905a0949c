package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern is a named heuristic that marks a sentence as typical for a
// category, e.g. {Name: "returns", Category: "summary", Expr: `^returns? `}.
type Pattern struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Expr     string `yaml:"expr"`
}

// Match is a pattern hit on a sentence.
type Match struct {
	Category string
	Pattern  string
}

// FeatureName returns "heuristic-<category>-<pattern>".
func (m Match) FeatureName() string {
	return FeatureName(m.Category, m.Pattern)
}

// FeatureName returns the feature attribute name for a pattern of a category.
func FeatureName(category, pattern string) string {
	return fmt.Sprintf("heuristic-%s-%s", category, pattern)
}

// Matcher finds which patterns apply to a sentence.
type Matcher interface {
	Match(sentence string) []Match
}

type compiledPattern struct {
	category string
	name     string
	re       *regexp.Regexp
}

// PatternMatcher matches sentences against compiled regular expressions.
type PatternMatcher struct {
	patterns []compiledPattern
	features []string
}

// NewPatternMatcher compiles patterns and resolves their category against
// the known categories. Category names are compared after normalization
// ("Usage Example" matches "usageexample"), and matches always report the
// canonical category name.
func NewPatternMatcher(categories []string, patterns []Pattern) (*PatternMatcher, error) {
	canonical := make(map[string]string, len(categories))
	for _, c := range categories {
		canonical[NormalizeCategory(c)] = c
	}

	m := &PatternMatcher{}
	seen := make(map[string]bool)
	for _, p := range patterns {
		if p.Name == "" || p.Expr == "" {
			return nil, fmt.Errorf("pattern %q: name and expr are required", p.Name)
		}
		category, ok := canonical[NormalizeCategory(p.Category)]
		if !ok {
			return nil, fmt.Errorf("pattern %q: unknown category %q", p.Name, p.Category)
		}
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Name, err)
		}
		m.patterns = append(m.patterns, compiledPattern{category: category, name: p.Name, re: re})

		feature := FeatureName(category, p.Name)
		if !seen[feature] {
			seen[feature] = true
			m.features = append(m.features, feature)
		}
	}
	sort.Strings(m.features)
	return m, nil
}

// Features returns the sorted, distinct feature names of all patterns.
func (m *PatternMatcher) Features() []string {
	return m.features
}

// Match returns the distinct patterns matching sentence, sorted by feature name.
func (m *PatternMatcher) Match(sentence string) []Match {
	seen := make(map[string]bool)
	var matches []Match
	for _, p := range m.patterns {
		if !p.re.MatchString(sentence) {
			continue
		}
		match := Match{Category: p.category, Pattern: p.name}
		if !seen[match.FeatureName()] {
			seen[match.FeatureName()] = true
			matches = append(matches, match)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].FeatureName() < matches[j].FeatureName()
	})
	return matches
}

// NormalizeCategory lowercases a category label and drops everything that is
// not a letter or digit.
func NormalizeCategory(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
