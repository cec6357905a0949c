package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
)

// Exporter writes datasets and views to a Sink.
type Exporter struct {
	sink Sink
}

// New creates an Exporter.
func New(sink Sink) *Exporter {
	return &Exporter{sink: sink}
}

// Dataset writes d as ARFF and returns its location.
func (e *Exporter) Dataset(ctx context.Context, d *model.Dataset) (string, error) {
	var buf bytes.Buffer
	if err := WriteARFF(&buf, d); err != nil {
		return "", fmt.Errorf("encode %s: %w", d.Name, err)
	}
	name := DatasetFileName(d)
	if err := e.sink.Put(ctx, name, buf.Bytes()); err != nil {
		return "", err
	}
	return e.sink.Location(name), nil
}

// PartitionSentences writes the partition sentences view of corpus as
// "<corpus>-partition-sentences.csv" and returns its location.
func (e *Exporter) PartitionSentences(ctx context.Context, corpus string, rows []store.PartitionSentence) (string, error) {
	var buf bytes.Buffer
	if err := WritePartitionSentences(&buf, rows); err != nil {
		return "", fmt.Errorf("encode partition sentences: %w", err)
	}
	name := corpus + "-partition-sentences.csv"
	if err := e.sink.Put(ctx, name, buf.Bytes()); err != nil {
		return "", err
	}
	return e.sink.Location(name), nil
}
