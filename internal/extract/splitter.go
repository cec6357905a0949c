package extract

import "strings"

// Splitter splits normalized comment text into sentences.
type Splitter interface {
	Split(text string) []string
}

// SentenceSplitter splits on sentence terminators followed by whitespace
// and on line breaks. Normalized text keeps paragraphs on separate lines,
// so a line never continues a sentence from the previous one.
type SentenceSplitter struct {
	minLength int
	maxLength int
}

// NewSentenceSplitter creates a splitter keeping sentences whose length is
// within [minLength, maxLength]. maxLength <= 0 disables the upper bound.
func NewSentenceSplitter(minLength, maxLength int) *SentenceSplitter {
	if minLength < 1 {
		minLength = 1
	}
	return &SentenceSplitter{minLength: minLength, maxLength: maxLength}
}

// Split splits text into sentences (simple heuristic)
func (s *SentenceSplitter) Split(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		sentences = append(sentences, s.splitLine(line)...)
	}
	return dedupeSentences(sentences)
}

func (s *SentenceSplitter) splitLine(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		c := line[i]
		current.WriteByte(c)

		// Check for sentence terminators
		if c == '.' || c == '!' || c == '?' {
			// Look ahead to avoid splitting on abbreviations and versions
			if i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '\t') {
				sentences = s.appendSentence(sentences, current.String())
				current.Reset()
			}
		}
	}

	// Add remaining text if it looks like a sentence
	if current.Len() > 0 {
		sentences = s.appendSentence(sentences, current.String())
	}
	return sentences
}

func (s *SentenceSplitter) appendSentence(sentences []string, sentence string) []string {
	sentence = strings.TrimSpace(sentence)
	if len(sentence) < s.minLength {
		return sentences
	}
	if s.maxLength > 0 && len(sentence) > s.maxLength {
		return sentences
	}
	return append(sentences, sentence)
}

// dedupeSentences removes repeated sentences, keeping first occurrences
func dedupeSentences(sentences []string) []string {
	seen := make(map[string]bool, len(sentences))
	unique := sentences[:0]
	for _, sentence := range sentences {
		if !seen[sentence] {
			seen[sentence] = true
			unique = append(unique, sentence)
		}
	}
	return unique
}
