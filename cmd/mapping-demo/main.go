// Demo program showing how comment text is normalized, split and mapped.
// Each case pairs a raw comment with the text an annotator classified.
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/commentlab/internal/extract"
	"github.com/ppiankov/commentlab/internal/preprocess"
)

func main() {
	fmt.Println("=== Sentence Mapping Demo ===")
	fmt.Println()

	cases := []struct {
		comment  string
		category string
	}{
		{"Returns the <b>size</b> of this list. Use {@link #add} to grow it.", "Returns the size of this list."},
		{"A FIFO queue!\nSee poll() for details", "See poll for details."},
		{"I.e. the cache is cleared, e.g. on reload. Not thread-safe.", "not thread safe"},
		{"Holds a reference to the parent widget.", "Holds the child widget."},
	}

	splitter := extract.NewSentenceSplitter(2, 1000)
	for _, c := range cases {
		comment := preprocess.Comment(c.comment)
		category := splitter.Split(preprocess.Comment(c.category))

		fmt.Printf("Comment:  %q\n", c.comment)
		fmt.Printf("Category: %q\n", c.category)
		fmt.Println(strings.Repeat("-", 60))

		for _, sentence := range splitter.Split(comment) {
			matched := false
			for _, cs := range category {
				if strategy, similarity, ok := extract.MapSentence(sentence, cs); ok {
					fmt.Printf("  ✓ %-40q %s (%.2f)\n", sentence, strategy, similarity)
					matched = true
				}
			}
			if !matched {
				fmt.Printf("  · %q\n", sentence)
			}
		}
		fmt.Println()
	}

	fmt.Println("=== Demo Complete ===")
}
