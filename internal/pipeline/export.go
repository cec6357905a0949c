package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/commentlab/internal/codec"
	"github.com/ppiankov/commentlab/internal/export"
)

// ExportReport lists the files written by an export.
type ExportReport struct {
	ExtractorsID int
	Files        []string
}

func (r *ExportReport) Task() string { return "export" }
func (r *ExportReport) Failed() int  { return 0 }

// Export writes every stored dataset of extractors partition extractorsID
// as ARFF, followed by the partition sentences view, to sink.
func (p *Pipeline) Export(ctx context.Context, extractorsID int, sink export.Sink) (*ExportReport, error) {
	corpus := p.config.Corpus
	records, err := p.store.Datasets(ctx, corpus, extractorsID, true)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no datasets for extractors partition %d (run datasets first)", extractorsID)
	}

	exporter := export.New(sink)
	report := &ExportReport{ExtractorsID: extractorsID}
	for _, rec := range records {
		d, err := codec.Decode(rec.Blob)
		if err != nil {
			return report, fmt.Errorf("dataset %d/%s: %w", rec.Partition, rec.Category, err)
		}
		loc, err := exporter.Dataset(ctx, d)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, loc)
	}

	sentences, err := p.store.PartitionSentences(ctx, corpus)
	if err != nil {
		return report, err
	}
	loc, err := exporter.PartitionSentences(ctx, corpus, sentences)
	if err != nil {
		return report, err
	}
	report.Files = append(report.Files, loc)

	p.logger.InfoContext(ctx, "export completed", "files", len(report.Files))
	return report, nil
}
