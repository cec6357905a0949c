package pipeline

import (
	"context"
	"sort"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/preprocess"
	"github.com/ppiankov/commentlab/internal/store"
	"github.com/ppiankov/commentlab/internal/worker"
	"golang.org/x/sync/errgroup"
)

// SplitReport summarizes the split task.
type SplitReport struct {
	Comments          int
	CommentSentences  int
	CategorySentences int
}

func (r *SplitReport) Task() string { return TaskSplit }
func (r *SplitReport) Failed() int  { return 0 }

type splitComment struct {
	comment    []string
	categories map[string][]string
}

// Split preprocesses every comment and its category texts and splits them
// into sentences. Ids are assigned in comment order, comment sentences
// before category sentences, so reruns yield the same ids.
func (p *Pipeline) Split(ctx context.Context) (*SplitReport, error) {
	comments, err := p.store.Comments(ctx, p.config.Corpus)
	if err != nil {
		return nil, err
	}

	split := make([]splitComment, len(comments))
	progress := worker.NewProgress(TaskSplit, len(comments), progressInterval, p.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency.Workers)
	for i, c := range comments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sc := splitComment{
				comment:    p.splitter.Split(preprocess.Comment(c.Comment)),
				categories: make(map[string][]string, len(c.Categories)),
			}
			for category, text := range c.Categories {
				sc.categories[category] = p.splitter.Split(preprocess.Comment(text))
			}
			split[i] = sc
			progress.Done(gctx, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &SplitReport{Comments: len(comments)}
	var records []store.SentenceRecord
	next := model.SentenceID(1)
	for i, c := range comments {
		for _, text := range split[i].comment {
			records = append(records, store.SentenceRecord{
				ID: next, Kind: store.KindComment, CommentID: c.ID,
				Class: c.Class, Stratum: c.Stratum, Text: text,
			})
			next++
			report.CommentSentences++
		}
		categories := make([]string, 0, len(split[i].categories))
		for category := range split[i].categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			for _, text := range split[i].categories[category] {
				records = append(records, store.SentenceRecord{
					ID: next, Kind: store.KindCategory, CommentID: c.ID,
					Class: c.Class, Stratum: c.Stratum, Category: category, Text: text,
				})
				next++
				report.CategorySentences++
			}
		}
	}

	if err := p.store.ReplaceSentences(ctx, p.config.Corpus, records); err != nil {
		return nil, err
	}
	return report, nil
}
