package features

import (
	"fmt"
	"os"

	"github.com/ppiankov/commentlab/internal/extract"
	"gopkg.in/yaml.v3"
)

// PatternSet is the YAML document holding heuristic patterns:
//
//	patterns:
//	  - name: returns
//	    category: summary
//	    expr: '^returns? '
type PatternSet struct {
	Patterns []extract.Pattern `yaml:"patterns"`
}

// ParsePatterns decodes a YAML pattern document.
func ParsePatterns(data []byte) (*PatternSet, error) {
	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	return &set, nil
}

// LoadPatternFile reads a YAML pattern file. An empty path yields an empty set.
func LoadPatternFile(path string) (*PatternSet, error) {
	if path == "" {
		return &PatternSet{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	return ParsePatterns(data)
}

// Marshal encodes the set as YAML.
func (s *PatternSet) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
