package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/commentlab/internal/logging"
)

// CategoryFunc processes one category and reports how many units (rows,
// assignments, ...) it produced.
type CategoryFunc func(ctx context.Context, category string) (int, error)

// CategoryJob runs a CategoryFunc for one category
type CategoryJob struct {
	Category string
	Fn       CategoryFunc
	Progress *Progress
}

// Execute executes the category job
func (j *CategoryJob) Execute(ctx context.Context) Result {
	start := time.Now()
	var (
		count int
		err   error
	)
	if err = ctx.Err(); err == nil {
		count, err = j.run(ctx)
	}
	if j.Progress != nil {
		j.Progress.Done(ctx, err)
	}
	return &CategoryResult{
		Category: j.Category,
		Count:    count,
		Duration: time.Since(start),
		Error:    err,
	}
}

// run converts a panic in one category into that category's error so the
// sibling categories keep running.
func (j *CategoryJob) run(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("category %s: panic: %v", j.Category, r)
		}
	}()
	return j.Fn(ctx, j.Category)
}

// CategoryResult represents the result of a category job
type CategoryResult struct {
	Category string
	Count    int
	Duration time.Duration
	Error    error
}

// GetError returns the error from the category result
func (r *CategoryResult) GetError() error {
	return r.Error
}

// BatchProcessor runs one job per category on a worker pool
type BatchProcessor struct {
	task        string
	concurrency int
	logger      *logging.Logger
	interval    time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(task string, concurrency int, logger *logging.Logger) *BatchProcessor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &BatchProcessor{
		task:        task,
		concurrency: concurrency,
		logger:      logger,
		interval:    2 * time.Second,
	}
}

// ProcessCategories runs fn for every category concurrently. A failing
// category does not stop the others. Results follow the order of categories.
func (b *BatchProcessor) ProcessCategories(ctx context.Context, categories []string, fn CategoryFunc) []*CategoryResult {
	if len(categories) == 0 {
		return []*CategoryResult{}
	}

	progress := NewProgress(b.task, len(categories), b.interval, b.logger)

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, category := range categories {
		pool.Submit(&CategoryJob{
			Category: category,
			Fn:       fn,
			Progress: progress,
		})
	}

	results := pool.Wait()

	byCategory := make(map[string]*CategoryResult, len(results))
	for _, result := range results {
		r := result.(*CategoryResult)
		byCategory[r.Category] = r
	}

	ordered := make([]*CategoryResult, 0, len(categories))
	for _, category := range categories {
		r, ok := byCategory[category]
		if !ok {
			err := fmt.Errorf("category %s: not run", category)
			if cause := context.Cause(ctx); cause != nil {
				err = fmt.Errorf("category %s: not run: %w", category, cause)
			}
			r = &CategoryResult{Category: category, Error: err}
		}
		ordered = append(ordered, r)
	}

	_, failed := progress.Counts()
	b.logger.LogBatch(ctx, b.task, len(categories), failed)
	return ordered
}

// Failed returns the failed results.
func Failed(results []*CategoryResult) []*CategoryResult {
	var out []*CategoryResult
	for _, r := range results {
		if r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}
