package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/commentlab/internal/features"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
)

// ExtractorsReport summarizes the extractors task.
type ExtractorsReport struct {
	ID        int
	Partition int
	Sentences int
	Words     int
	Patterns  int
}

func (r *ExtractorsReport) Task() string { return TaskExtractors }
func (r *ExtractorsReport) Failed() int  { return 0 }

// Extractors fits the vocabulary on the sentences of partition, which must
// be the training partition, and stores it with the configured patterns as
// extractors partition id.
func (p *Pipeline) Extractors(ctx context.Context, partition, id int) (*ExtractorsReport, error) {
	cfg := p.config
	if partition != model.TrainingPartition {
		return nil, fmt.Errorf("%w: extractors must be fitted on the training partition %d, got %d",
			model.ErrConfig, model.TrainingPartition, partition)
	}
	categories, err := p.categories(ctx)
	if err != nil {
		return nil, err
	}
	patterns, err := features.LoadPatternFile(cfg.Extractors.PatternsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}

	texts, err := p.store.PartitionTexts(ctx, cfg.Corpus, partition)
	if err != nil {
		return nil, err
	}
	ex := &features.Extractors{
		ID:         id,
		Partition:  partition,
		Vocabulary: features.FitVocabulary(texts, cfg.Extractors.WordsToKeep),
		Patterns:   patterns,
	}
	// Patterns naming unknown categories must fail before anything is saved.
	if _, err := ex.Matcher(categories); err != nil {
		return nil, err
	}
	vocabulary, encodedPatterns, err := ex.Encode()
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveExtractors(ctx, cfg.Corpus, store.ExtractorsRecord{
		ID:         id,
		Partition:  partition,
		Vocabulary: vocabulary,
		Patterns:   encodedPatterns,
	}); err != nil {
		return nil, err
	}
	p.extractors.Invalidate(cfg.Corpus, id)

	return &ExtractorsReport{
		ID:        id,
		Partition: partition,
		Sentences: len(texts),
		Words:     ex.Vocabulary.Len(),
		Patterns:  len(patterns.Patterns),
	}, nil
}
