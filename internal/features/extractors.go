package features

import (
	"fmt"

	"github.com/ppiankov/commentlab/internal/extract"
	"github.com/ppiankov/commentlab/internal/model"
)

// Extractors is the artifact of one extractors partition.
type Extractors struct {
	ID         int
	Partition  int // Train/test partition the vocabulary was fitted on
	Vocabulary *Vocabulary
	Patterns   *PatternSet
}

// Decode rebuilds Extractors from their stored text forms.
func Decode(id, partition int, vocabulary, patterns []byte) (*Extractors, error) {
	v, err := ParseVocabulary(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: extractors %d: %v", model.ErrMissingArtifact, id, err)
	}
	p, err := ParsePatterns(patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: extractors %d: %v", model.ErrMissingArtifact, id, err)
	}
	return &Extractors{ID: id, Partition: partition, Vocabulary: v, Patterns: p}, nil
}

// Encode returns the stored text forms (vocabulary CSV, patterns YAML).
func (e *Extractors) Encode() (vocabulary, patterns []byte, err error) {
	vocabulary, err = e.Vocabulary.MarshalCSV()
	if err != nil {
		return nil, nil, err
	}
	patterns, err = e.Patterns.Marshal()
	if err != nil {
		return nil, nil, err
	}
	return vocabulary, patterns, nil
}

// Matcher compiles the patterns against the category list. A pattern that
// names an unknown category or does not compile is a configuration error.
func (e *Extractors) Matcher(categories []string) (*extract.PatternMatcher, error) {
	m, err := extract.NewPatternMatcher(categories, e.Patterns.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: extractors %d: %v", model.ErrConfig, e.ID, err)
	}
	return m, nil
}

// TFIDFFeatureName returns "tfidf-<word>".
func TFIDFFeatureName(word string) string {
	return "tfidf-" + word
}
