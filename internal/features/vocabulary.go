package features

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Vocabulary is the fixed dictionary of an extractors partition. Words are
// kept in ascending order; Count is the number of sentences containing the
// word in the sentences the vocabulary was fitted on.
type Vocabulary struct {
	words  []string
	counts []int
	index  map[string]int
}

func newVocabulary(words []string, counts map[string]int) *Vocabulary {
	sort.Strings(words)
	v := &Vocabulary{
		words:  words,
		counts: make([]int, len(words)),
		index:  make(map[string]int, len(words)),
	}
	for i, w := range words {
		v.counts[i] = counts[w]
		v.index[w] = i
	}
	return v
}

// FitVocabulary builds a vocabulary from sentences. wordsToKeep > 0 keeps
// the most frequent words only, breaking ties by word.
func FitVocabulary(sentences []string, wordsToKeep int) *Vocabulary {
	df := make(map[string]int)
	for _, s := range sentences {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(s) {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	words := make([]string, 0, len(df))
	for w := range df {
		words = append(words, w)
	}
	if wordsToKeep > 0 && len(words) > wordsToKeep {
		sort.Slice(words, func(i, j int) bool {
			if df[words[i]] != df[words[j]] {
				return df[words[i]] > df[words[j]]
			}
			return words[i] < words[j]
		})
		words = words[:wordsToKeep]
	}
	return newVocabulary(words, df)
}

// Len returns the number of words.
func (v *Vocabulary) Len() int { return len(v.words) }

// Words returns the words in ascending order.
func (v *Vocabulary) Words() []string { return v.words }

// Index returns the position of word.
func (v *Vocabulary) Index(word string) (int, bool) {
	i, ok := v.index[word]
	return i, ok
}

// Count returns the fitted sentence count of word.
func (v *Vocabulary) Count(word string) int {
	if i, ok := v.index[word]; ok {
		return v.counts[i]
	}
	return 0
}

// MarshalCSV writes one "word,count" line per word.
func (v *Vocabulary) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i, word := range v.words {
		if err := w.Write([]string{word, strconv.Itoa(v.counts[i])}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseVocabulary reads the format written by MarshalCSV.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 2

	counts := make(map[string]int)
	var words []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse vocabulary: %w", err)
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parse vocabulary: word %q: %w", record[0], err)
		}
		if _, dup := counts[record[0]]; dup {
			return nil, fmt.Errorf("parse vocabulary: duplicate word %q", record[0])
		}
		counts[record[0]] = n
		words = append(words, record[0])
	}
	return newVocabulary(words, counts), nil
}
