package partition

import (
	"context"
	"fmt"

	"github.com/ppiankov/commentlab/internal/model"
	"golang.org/x/sync/errgroup"
)

// Partitioner assigns the ids of a bucket to train/test partitions,
// stratum by stratum.
type Partitioner struct {
	percentages   Percentages
	selection     Selection
	strataWorkers int
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithSelection replaces the default lowest-id selection.
func WithSelection(s Selection) Option {
	return func(p *Partitioner) {
		if s != nil {
			p.selection = s
		}
	}
}

// WithStrataWorkers bounds how many strata are partitioned concurrently.
func WithStrataWorkers(n int) Option {
	return func(p *Partitioner) {
		if n > 0 {
			p.strataWorkers = n
		}
	}
}

// New creates a Partitioner. Invalid percentages are a configuration error.
func New(percentages Percentages, opts ...Option) (*Partitioner, error) {
	if err := percentages.Validate(); err != nil {
		return nil, err
	}
	p := &Partitioner{
		percentages:   append(Percentages(nil), percentages...),
		selection:     SelectLowest(),
		strataWorkers: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Partitions returns the number of partitions produced.
func (p *Partitioner) Partitions() int {
	return len(p.percentages)
}

// Percentages returns a copy of the configured percentages.
func (p *Partitioner) Percentages() Percentages {
	return append(Percentages(nil), p.percentages...)
}

// Partition assigns every id of b to exactly one partition. Strata are
// processed concurrently; the result lists strata in ascending order so the
// output is deterministic for a deterministic selection.
func (p *Partitioner) Partition(ctx context.Context, category string, it model.InstanceType, b *Bucket) ([]model.Assignment, error) {
	if b == nil {
		return nil, nil
	}
	strata := b.Strata()
	results := make([][]Slot, len(strata))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.strataWorkers)
	for i, stratum := range strata {
		ids := b.strata[stratum]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n := int(ids.GetCardinality())
			results[i] = RoundRobin(ids, Quotas(n, p.percentages), p.selection(stratum))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("partition %s/%s: %w", category, it, err)
	}

	var assignments []model.Assignment
	for _, slots := range results {
		for _, s := range slots {
			assignments = append(assignments, model.Assignment{
				SentenceID:   model.SentenceID(s.ID),
				Category:     category,
				InstanceType: it,
				Partition:    s.Partition,
			})
		}
	}
	return assignments, nil
}

// PartitionCategory partitions both instance types of one category,
// positives first.
func (p *Partitioner) PartitionCategory(ctx context.Context, category string, positives, negatives *Bucket) ([]model.Assignment, error) {
	pos, err := p.Partition(ctx, category, model.Positive, positives)
	if err != nil {
		return nil, err
	}
	neg, err := p.Partition(ctx, category, model.Negative, negatives)
	if err != nil {
		return nil, err
	}
	return append(pos, neg...), nil
}

// Partition is a convenience wrapper using the default lowest-id selection.
func Partition(ctx context.Context, category string, it model.InstanceType, b *Bucket, percentages Percentages) ([]model.Assignment, error) {
	p, err := New(percentages)
	if err != nil {
		return nil, err
	}
	return p.Partition(ctx, category, it, b)
}
