package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/commentlab/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestTableAlignsColumns(t *testing.T) {
	out := Table([]string{"A", "B"}, [][]string{{"long-cell", "x"}, {"s", "yy"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "x"), strings.Index(lines[2], "yy"))
}

func TestPartitionReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, &pipeline.PartitionReport{
		Percentages: []int{80, 20},
		Ignored:     2,
		Categories: []pipeline.CategoryPartition{
			{Category: "summary", Positives: []int{4, 1}, Negatives: []int{8, 2}},
			{Category: "usage", Err: errors.New("boom")},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "P0 (80%)")
	assert.Contains(t, out, "4/8")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Ignored 2 mappings")
	assert.Contains(t, out, "1 failed")
}

func TestDatasetsReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, &pipeline.DatasetsReport{
		ExtractorsID: 0,
		Compression:  "zstd",
		Units: []pipeline.DatasetUnit{
			{Category: "summary", Partition: 0, Rows: 3, Positives: 3, Degenerate: true},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "single label")
	assert.Contains(t, out, "Assembled (extractors 0, zstd) 1/1")
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, "commentlab run", [2]string{"Corpus", "java"}, [2]string{"Tasks", "split"})
	assert.Contains(t, buf.String(), "Corpus: java")
	assert.Contains(t, buf.String(), "Tasks:  split")
}
