package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceSplitter_Split(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		text     string
		want     []string
	}{
		{"terminators and lines", 2, 0, "first one. second one!\nthird", []string{"first one.", "second one!", "third"}},
		{"no split inside numbers", 2, 0, "version 1.5 works. done", []string{"version 1.5 works.", "done"}},
		{"duplicates removed", 2, 0, "same. same.", []string{"same."}},
		{"min length", 5, 0, "ok. long enough", []string{"long enough"}},
		{"max length", 1, 6, "short. too long here", []string{"short."}},
		{"empty", 2, 0, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSentenceSplitter(tt.min, tt.max).Split(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapSentence(t *testing.T) {
	tests := []struct {
		comment, category string
		strategy          Strategy
		ok                bool
	}{
		{"a b.", "a b.", StrategyEquals, true},
		{"returns the list of items.", "the list", StrategyContains, true},
		{"see poll for details.", "see poll for details!", StrategyContainsStripped, true},
		{"not thread safe.", "not thread-safe", StrategyContainsAlnum, true},
		{"foo", "bar", "", false},
		{"foo", "", "", false},
		{"foo", "...", "", false},
	}
	for _, tt := range tests {
		strategy, similarity, ok := MapSentence(tt.comment, tt.category)
		assert.Equal(t, tt.ok, ok, "MapSentence(%q, %q)", tt.comment, tt.category)
		assert.Equal(t, tt.strategy, strategy, "MapSentence(%q, %q)", tt.comment, tt.category)
		if ok {
			assert.Greater(t, similarity, 0.0)
			assert.LessOrEqual(t, similarity, 1.0)
		}
	}

	_, similarity, _ := MapSentence("a b.", "a b.")
	assert.Equal(t, 1.0, similarity, "equal sentences")
}

func TestPatternMatcher(t *testing.T) {
	categories := []string{"summary", "Usage Example"}
	m, err := NewPatternMatcher(categories, []Pattern{
		{Name: "returns", Category: "summary", Expr: `^returns? `},
		{Name: "see", Category: "usageexample", Expr: `see `},
		{Name: "returns", Category: "Summary", Expr: `^return `},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"heuristic-Usage Example-see", "heuristic-summary-returns"}, m.Features())

	got := m.Match("returns the list, see x")
	want := []Match{{Category: "Usage Example", Pattern: "see"}, {Category: "summary", Pattern: "returns"}}
	assert.Equal(t, want, got)
	assert.Empty(t, m.Match("nothing here"))
}

func TestPatternMatcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
	}{
		{"unknown category", Pattern{Name: "x", Category: "rationale", Expr: "x"}},
		{"bad expression", Pattern{Name: "x", Category: "summary", Expr: "("}},
		{"missing name", Pattern{Category: "summary", Expr: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatternMatcher([]string{"summary"}, []Pattern{tt.pattern})
			assert.Error(t, err)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "usageexample2", NormalizeCategory("Usage-Example 2"))
}
