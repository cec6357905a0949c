package extract

import (
	"regexp"
	"strings"
)

// Strategy names how a comment sentence was matched to a category sentence.
type Strategy string

const (
	StrategyEquals           Strategy = "equals"
	StrategyContains         Strategy = "contains"
	StrategyContainsStripped Strategy = "contains-stripped" // trailing terminator ignored
	StrategyContainsAlnum    Strategy = "contains-a-z-0-9"  // only [a-z0-9] compared
)

var (
	trailingTerminator = regexp.MustCompile(`[.!?]$`)
	nonAlnum           = regexp.MustCompile(`[^a-z0-9]`)
)

// MapSentence decides whether categorySentence (a sentence an annotator put
// into a category) is part of commentSentence. Strategies are tried from the
// strictest to the loosest; similarity is 1 for equal sentences and the
// length ratio otherwise.
func MapSentence(commentSentence, categorySentence string) (Strategy, float64, bool) {
	if commentSentence == "" || categorySentence == "" {
		return "", 0, false
	}
	ratio := float64(len(categorySentence)) / float64(len(commentSentence))

	switch {
	case commentSentence == categorySentence:
		return StrategyEquals, 1.0, true
	case strings.Contains(commentSentence, categorySentence):
		return StrategyContains, ratio, true
	case strings.Contains(
		trailingTerminator.ReplaceAllString(commentSentence, ""),
		trailingTerminator.ReplaceAllString(categorySentence, ""),
	):
		return StrategyContainsStripped, ratio, true
	}

	category := nonAlnum.ReplaceAllString(categorySentence, "")
	if category == "" {
		return "", 0, false
	}
	if strings.Contains(nonAlnum.ReplaceAllString(commentSentence, ""), category) {
		return StrategyContainsAlnum, ratio, true
	}
	return "", 0, false
}
