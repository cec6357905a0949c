package pipeline

import (
	"context"

	"github.com/ppiankov/commentlab/internal/extract"
	"github.com/ppiankov/commentlab/internal/store"
)

// MapReport summarizes the map task.
type MapReport struct {
	CommentSentences int
	Mapped           int
	ByStrategy       map[string]int
}

func (r *MapReport) Task() string { return TaskMap }
func (r *MapReport) Failed() int  { return 0 }

// Map matches every comment sentence against the category sentences of the
// same class and stores the mappings found.
func (p *Pipeline) Map(ctx context.Context) (*MapReport, error) {
	corpus := p.config.Corpus
	commentSentences, err := p.store.Sentences(ctx, corpus, store.KindComment)
	if err != nil {
		return nil, err
	}
	categorySentences, err := p.store.Sentences(ctx, corpus, store.KindCategory)
	if err != nil {
		return nil, err
	}

	byClass := make(map[string][]store.SentenceRecord)
	for _, s := range categorySentences {
		byClass[s.Class] = append(byClass[s.Class], s)
	}

	var mappings []store.MappingRecord
	mapped := make(map[int64]bool)
	for _, cs := range commentSentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, cat := range byClass[cs.Class] {
			strategy, similarity, ok := extract.MapSentence(cs.Text, cat.Text)
			if !ok {
				continue
			}
			mappings = append(mappings, store.MappingRecord{
				CommentSentenceID:  cs.ID,
				CategorySentenceID: cat.ID,
				Category:           cat.Category,
				Strategy:           string(strategy),
				Similarity:         similarity,
			})
			mapped[int64(cs.ID)] = true
		}
	}

	if err := p.store.ReplaceMappings(ctx, corpus, mappings); err != nil {
		return nil, err
	}
	stats, err := p.store.MappingStats(ctx, corpus)
	if err != nil {
		return nil, err
	}
	return &MapReport{
		CommentSentences: len(commentSentences),
		Mapped:           len(mapped),
		ByStrategy:       stats,
	}, nil
}
