package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/commentlab/internal/derive"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/partition"
	"github.com/ppiankov/commentlab/internal/worker"
)

// CategoryPartition is the partition outcome of one category.
type CategoryPartition struct {
	Category  string
	Positives []int // per partition
	Negatives []int // per partition
	Err       error
}

// PartitionReport summarizes the partition task.
type PartitionReport struct {
	RunID       string
	Percentages partition.Percentages
	Ignored     int
	Categories  []CategoryPartition
}

func (r *PartitionReport) Task() string { return TaskPartition }

func (r *PartitionReport) Failed() int {
	n := 0
	for _, c := range r.Categories {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Partition derives the positive and negative instances of every category
// and assigns them to partitions, one worker job per category. Each
// category's assignments are written in one transaction; a failing
// category leaves the others intact.
func (p *Pipeline) Partition(ctx context.Context) (*PartitionReport, error) {
	cfg := p.config

	// Everything that can be a configuration error is checked before the
	// run is registered, because registering clears previous assignments.
	percentages := partition.Percentages(cfg.Partition.Percentages)
	selection, err := partition.SelectionByName(cfg.Partition.Selection, cfg.Partition.Seed)
	if err != nil {
		return nil, err
	}
	partitioner, err := partition.New(percentages,
		partition.WithSelection(selection),
		partition.WithStrataWorkers(cfg.Concurrency.StrataWorkers),
	)
	if err != nil {
		return nil, err
	}
	categories, err := p.categories(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := p.store.Mappings(ctx, cfg.Corpus)
	if err != nil {
		return nil, err
	}

	positives, ignored := derive.Positives(categories, mappings)
	if ignored > 0 {
		p.logger.DebugContext(ctx, "mappings with unknown categories ignored", "count", ignored)
	}

	run, err := p.store.BeginPartitionRun(ctx, cfg.Corpus, percentages, cfg.Partition.Selection)
	if err != nil {
		return nil, err
	}

	report := &PartitionReport{
		RunID:       run.ID,
		Percentages: percentages,
		Ignored:     ignored,
		Categories:  make([]CategoryPartition, len(categories)),
	}
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
		report.Categories[i] = CategoryPartition{Category: c}
	}

	n := partitioner.Partitions()
	batch := worker.NewBatchProcessor(TaskPartition, cfg.Concurrency.Workers, p.logger)
	results := batch.ProcessCategories(ctx, categories, func(ctx context.Context, category string) (int, error) {
		assignments, err := p.partitionCategory(ctx, partitioner, run.ID, category, categories, positives)
		p.logger.LogPartition(ctx, category, len(assignments), err)
		if err != nil {
			return 0, err
		}
		// Each job owns its category's slot in the report.
		cp := &report.Categories[index[category]]
		cp.Positives = make([]int, n)
		cp.Negatives = make([]int, n)
		for _, a := range assignments {
			if a.InstanceType == model.Positive {
				cp.Positives[a.Partition]++
			} else {
				cp.Negatives[a.Partition]++
			}
		}
		return len(assignments), nil
	})
	for _, r := range results {
		report.Categories[index[r.Category]].Err = r.Error
	}
	return report, nil
}

// partitionCategory partitions one category and persists its assignments.
func (p *Pipeline) partitionCategory(ctx context.Context, partitioner *partition.Partitioner, runID, category string, categories []string, positives map[string]derive.Members) ([]model.Assignment, error) {
	posBucket, err := partition.BucketOf(positives[category])
	if err != nil {
		return nil, fmt.Errorf("positives: %w", err)
	}
	negBucket, err := partition.BucketOf(derive.ForCategory(category, categories, positives))
	if err != nil {
		return nil, fmt.Errorf("negatives: %w", err)
	}
	assignments, err := partitioner.PartitionCategory(ctx, category, posBucket, negBucket)
	if err != nil {
		return nil, err
	}
	if err := p.store.AppendAssignments(ctx, p.config.Corpus, runID, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}
