package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/commentlab/internal/assemble"
	"github.com/ppiankov/commentlab/internal/codec"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
	"github.com/ppiankov/commentlab/internal/worker"
)

// DatasetUnit is the outcome of one (category, partition).
type DatasetUnit struct {
	Category   string
	Partition  int
	Rows       int
	Positives  int
	Negatives  int
	Degenerate bool
	Err        error
}

// DatasetsReport summarizes the datasets task.
type DatasetsReport struct {
	ExtractorsID int
	Compression  string
	Units        []DatasetUnit
}

func (r *DatasetsReport) Task() string { return TaskDatasets }

func (r *DatasetsReport) Failed() int {
	n := 0
	for _, u := range r.Units {
		if u.Err != nil {
			n++
		}
	}
	return n
}

// Degenerate counts the single-label datasets.
func (r *DatasetsReport) Degenerate() int {
	n := 0
	for _, u := range r.Units {
		if u.Err == nil && u.Degenerate {
			n++
		}
	}
	return n
}

// Datasets assembles and stores one dataset per (category, partition) with
// extractors partition extractorsID. Categories run concurrently; within a
// category the training partition is assembled before the testing ones.
func (p *Pipeline) Datasets(ctx context.Context, extractorsID int) (*DatasetsReport, error) {
	cfg := p.config
	compression, err := codec.ParseCompression(cfg.Assembly.Compression)
	if err != nil {
		return nil, err
	}
	categories, err := p.categories(ctx)
	if err != nil {
		return nil, err
	}
	ex, err := p.extractors.Get(ctx, cfg.Corpus, extractorsID)
	if err != nil {
		return nil, err
	}
	assembler, err := assemble.New(cfg.Corpus, categories, ex)
	if err != nil {
		return nil, err
	}
	partitions, err := p.partitionCount(ctx)
	if err != nil {
		return nil, err
	}
	texts, err := p.store.SentenceTexts(ctx, cfg.Corpus)
	if err != nil {
		return nil, err
	}

	report := &DatasetsReport{ExtractorsID: extractorsID, Compression: compression.String()}
	collected := make([][]DatasetUnit, len(categories))
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
	}

	batch := worker.NewBatchProcessor(TaskDatasets, cfg.Concurrency.Workers, p.logger)
	batch.ProcessCategories(ctx, categories, func(ctx context.Context, category string) (int, error) {
		assignments, err := p.store.Assignments(ctx, cfg.Corpus, category)
		if err != nil {
			collected[index[category]] = []DatasetUnit{{Category: category, Err: err}}
			return 0, err
		}
		var (
			out  []DatasetUnit
			errs []error
		)
		for _, r := range assembler.AssembleCategory(category, partitions, assignments, assemble.TextMap(texts)) {
			unit := DatasetUnit{Category: category, Partition: r.Partition, Err: r.Err}
			if r.Err == nil {
				unit.Err = p.saveDataset(ctx, r.Dataset, compression)
				unit.Rows = len(r.Dataset.Rows)
				unit.Positives, unit.Negatives = r.Dataset.Counts()
				unit.Degenerate = r.Dataset.Degenerate()
			}
			p.logger.LogDataset(ctx, category, r.Partition, unit.Rows, unit.Degenerate, unit.Err)
			if unit.Err != nil {
				errs = append(errs, unit.Err)
			}
			out = append(out, unit)
		}
		collected[index[category]] = out
		return len(out), errors.Join(errs...)
	})

	for i, c := range categories {
		if collected[i] == nil {
			collected[i] = []DatasetUnit{{Category: c, Err: fmt.Errorf("category %s: not run", c)}}
		}
		report.Units = append(report.Units, collected[i]...)
	}
	return report, nil
}

func (p *Pipeline) saveDataset(ctx context.Context, d *model.Dataset, compression codec.Compression) error {
	blob, err := codec.Encode(d, compression)
	if err != nil {
		return err
	}
	pos, neg := d.Counts()
	return p.store.SaveDataset(ctx, p.config.Corpus, store.DatasetRecord{
		Partition:           d.Partition,
		ExtractorsPartition: d.ExtractorsPartition,
		Category:            d.Category,
		Compression:         compression.String(),
		Rows:                len(d.Rows),
		Positives:           pos,
		Negatives:           neg,
		Degenerate:          d.Degenerate(),
		Blob:                blob,
	})
}

// partitionCount returns the number of partitions of the latest partition
// run, falling back to the configured percentages.
func (p *Pipeline) partitionCount(ctx context.Context) (int, error) {
	runs, err := p.store.PartitionRuns(ctx, p.config.Corpus)
	if err != nil {
		return 0, err
	}
	if len(runs) > 0 && len(runs[0].Percentages) > 0 {
		return len(runs[0].Percentages), nil
	}
	return len(p.config.Partition.Percentages), nil
}
