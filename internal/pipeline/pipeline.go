// Package pipeline runs the commentlab tasks against the store: import,
// split, map, partition, extractors and datasets.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/commentlab/internal/cache"
	"github.com/ppiankov/commentlab/internal/extract"
	"github.com/ppiankov/commentlab/internal/features"
	"github.com/ppiankov/commentlab/internal/logging"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
)

// Task names accepted by RunTasks, in pipeline order.
const (
	TaskSplit      = "split"
	TaskMap        = "map"
	TaskPartition  = "partition"
	TaskExtractors = "extractors"
	TaskDatasets   = "datasets"
)

const progressInterval = 2 * time.Second

// Tasks lists the tasks RunTasks accepts.
var Tasks = []string{TaskSplit, TaskMap, TaskPartition, TaskExtractors, TaskDatasets}

// Pipeline orchestrates the tasks of one corpus
type Pipeline struct {
	store      *store.SQLiteStore
	config     *model.Config
	logger     *logging.Logger
	splitter   extract.Splitter
	fetcher    *Fetcher
	extractors *cache.Extractors
}

// NewPipeline creates a pipeline. The configuration is validated here so
// configuration errors surface before any task writes.
func NewPipeline(cfg *model.Config, st *store.SQLiteStore, logger *logging.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	p := &Pipeline{
		store:    st,
		config:   cfg,
		logger:   logger.WithCorpus(cfg.Corpus),
		splitter: extract.NewSentenceSplitter(cfg.Split.MinLength, cfg.Split.MaxLength),
		fetcher:  NewFetcher(cfg.Import),
	}
	p.extractors = cache.NewExtractors(p.loadExtractors, 10*time.Minute)
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *model.Config {
	return p.config
}

func (p *Pipeline) loadExtractors(ctx context.Context, corpus string, id int) (*features.Extractors, error) {
	rec, err := p.store.LoadExtractors(ctx, corpus, id)
	if err != nil {
		return nil, err
	}
	return features.Decode(rec.ID, rec.Partition, rec.Vocabulary, rec.Patterns)
}

// categories loads the category list; an empty list is a configuration error.
func (p *Pipeline) categories(ctx context.Context) ([]string, error) {
	categories, err := p.store.Categories(ctx, p.config.Corpus)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w (corpus %s; run import first)", model.ErrNoCategories, p.config.Corpus)
	}
	return categories, nil
}

// Report is implemented by every task result.
type Report interface {
	Task() string
	Failed() int
}

// ParseTasks splits a comma-separated task list and checks every name.
func ParseTasks(s string) ([]string, error) {
	known := make(map[string]bool, len(Tasks))
	for _, t := range Tasks {
		known[t] = true
	}
	var tasks []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, fmt.Errorf("%w: unknown task %q (expected %s)", model.ErrConfig, t, strings.Join(Tasks, "|"))
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks given", model.ErrConfig)
	}
	return tasks, nil
}

// RunTasks runs tasks in the given order and stops at the first task that
// returns an error. Per-category failures inside a task are part of its
// report and do not stop the run. onReport, if set, is called after each task.
func (p *Pipeline) RunTasks(ctx context.Context, tasks []string, onReport func(Report)) error {
	for _, task := range tasks {
		start := time.Now()
		p.logger.InfoContext(ctx, "task started", "task", task)

		var (
			report Report
			err    error
		)
		switch task {
		case TaskSplit:
			report, err = p.Split(ctx)
		case TaskMap:
			report, err = p.Map(ctx)
		case TaskPartition:
			report, err = p.Partition(ctx)
		case TaskExtractors:
			report, err = p.Extractors(ctx, p.config.Extractors.Partition, p.config.Extractors.ID)
		case TaskDatasets:
			report, err = p.Datasets(ctx, p.config.Assembly.ExtractorsID)
		default:
			err = fmt.Errorf("%w: unknown task %q", model.ErrConfig, task)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", task, err)
		}
		p.logger.InfoContext(ctx, "task completed",
			"task", task,
			"failed", report.Failed(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		if onReport != nil {
			onReport(report)
		}
	}
	return nil
}
