package features

import (
	"math"
	"sort"
)

// IDF holds inverse document frequencies over a vocabulary, fitted on one
// set of sentences and reused unchanged for any other set.
type IDF struct {
	docs    int
	weights []float64
}

// FitIDF computes idf(w) = log(N/df(w)) over the tokenized sentences.
// Words that never occur get weight 0.
func FitIDF(v *Vocabulary, sentences [][]string) *IDF {
	df := make([]int, v.Len())
	for _, tokens := range sentences {
		seen := make(map[int]bool)
		for _, tok := range tokens {
			if i, ok := v.Index(tok); ok && !seen[i] {
				seen[i] = true
				df[i]++
			}
		}
	}

	f := &IDF{docs: len(sentences), weights: make([]float64, v.Len())}
	for i, n := range df {
		if n > 0 {
			f.weights[i] = math.Log(float64(f.docs) / float64(n))
		}
	}
	return f
}

// Docs returns the number of sentences the IDF was fitted on.
func (f *IDF) Docs() int { return f.docs }

// Weight returns the idf of vocabulary word i.
func (f *IDF) Weight(i int) float64 {
	if i < 0 || i >= len(f.weights) {
		return 0
	}
	return f.weights[i]
}

// Vectorize returns the non-zero tf-idf values of tokens as parallel index
// and value slices, ascending by vocabulary index. tf is log(1+count).
func (f *IDF) Vectorize(v *Vocabulary, tokens []string) ([]int, []float64) {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if i, ok := v.Index(tok); ok {
			counts[i]++
		}
	}

	index := make([]int, 0, len(counts))
	for i := range counts {
		index = append(index, i)
	}
	sort.Ints(index)

	outIndex := index[:0]
	values := make([]float64, 0, len(index))
	for _, i := range index {
		w := math.Log1p(float64(counts[i])) * f.Weight(i)
		if w == 0 {
			continue
		}
		outIndex = append(outIndex, i)
		values = append(values, w)
	}
	return outIndex, values
}
