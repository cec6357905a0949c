package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/commentlab/internal/export"
	"github.com/ppiankov/commentlab/internal/logging"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `class,stratum,comment,summary,usage
List,0,"A list of items. Use add to append.","A list of items.","Use add to append."
Map,0,"Maps keys to values. Call put to insert.","Maps keys to values.","Call put to insert."
Set,1,"A set without duplicates. Use contains to check.","A set without duplicates.",""
Queue,1,"A FIFO queue. See poll for details.","A FIFO queue.","See poll for details."
Stack,x,"A bad row.",,
`

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "commentlab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := model.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "commentlab.db")
	cfg.Concurrency.Workers = 2
	cfg.Partition.Percentages = []int{50, 50}

	p, err := NewPipeline(cfg, st, logging.Nop())
	require.NoError(t, err)

	path := filepath.Join(dir, "comments.csv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))
	report, err := p.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "usage"}, report.Categories)
	assert.Equal(t, 4, report.Comments)
	assert.Equal(t, 1, report.Skipped)
	return p
}

func TestParseTable(t *testing.T) {
	categories, comments, skipped, err := ParseTable(strings.NewReader(table))
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "usage"}, categories)
	require.Len(t, comments, 4)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "List", comments[0].Class)
	assert.Equal(t, "Use add to append.", comments[0].Categories["usage"])
	_, ok := comments[2].Categories["usage"]
	assert.False(t, ok, "empty cells are not category texts")
}

func TestParseTableByteOrderMark(t *testing.T) {
	categories, comments, _, err := ParseTable(strings.NewReader("\uFEFF" + table))
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "usage"}, categories)
	assert.Len(t, comments, 4)
}

func TestParseTableMissingColumn(t *testing.T) {
	_, _, _, err := ParseTable(strings.NewReader("class,comment,summary\nList,x,y\n"))
	assert.True(t, model.IsConfigError(err))
}

func TestParseTasks(t *testing.T) {
	tasks, err := ParseTasks("split, map,partition")
	require.NoError(t, err)
	assert.Equal(t, []string{TaskSplit, TaskMap, TaskPartition}, tasks)

	_, err = ParseTasks("split,train")
	assert.True(t, model.IsConfigError(err))
	_, err = ParseTasks(" , ")
	assert.True(t, model.IsConfigError(err))
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Partition.Percentages = []int{70, 20}
	_, err := NewPipeline(cfg, nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidPercentages)
}

func TestRunTasksEndToEnd(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	var reports []Report
	err := p.RunTasks(ctx, Tasks, func(r Report) { reports = append(reports, r) })
	require.NoError(t, err)
	require.Len(t, reports, len(Tasks))
	for _, r := range reports {
		assert.Zero(t, r.Failed(), r.Task())
	}

	split := reports[0].(*SplitReport)
	assert.Equal(t, 8, split.CommentSentences)
	assert.Equal(t, 7, split.CategorySentences)

	mapped := reports[1].(*MapReport)
	assert.Equal(t, 7, mapped.Mapped)

	part := reports[2].(*PartitionReport)
	require.Len(t, part.Categories, 2)
	for _, c := range part.Categories {
		assert.Len(t, c.Positives, 2)
		total := 0
		for i := range c.Positives {
			total += c.Positives[i] + c.Negatives[i]
		}
		assert.Equal(t, 7, total, c.Category)
	}

	datasets := reports[4].(*DatasetsReport)
	assert.Len(t, datasets.Units, 4)

	records, err := p.store.Datasets(ctx, p.config.Corpus, 0, false)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	sink, err := export.NewDirSink(t.TempDir())
	require.NoError(t, err)
	exported, err := p.Export(ctx, 0, sink)
	require.NoError(t, err)
	require.Len(t, exported.Files, 5)
	assert.True(t, strings.HasSuffix(exported.Files[0], "0-0-summary.arff"))
	assert.True(t, strings.HasSuffix(exported.Files[4], "java-partition-sentences.csv"))
}

func TestDatasetsWithoutExtractors(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	require.NoError(t, p.RunTasks(ctx, []string{TaskSplit, TaskMap, TaskPartition}, nil))

	_, err := p.Datasets(ctx, 3)
	assert.ErrorIs(t, err, model.ErrMissingArtifact)
}

func TestExtractorsRejectsTestingPartition(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	require.NoError(t, p.RunTasks(ctx, []string{TaskSplit, TaskMap, TaskPartition}, nil))

	_, err := p.Extractors(ctx, 1, 9)
	require.True(t, model.IsConfigError(err), "got %v", err)

	// Nothing was stored, so datasets cannot be assembled with id 9.
	_, err = p.Datasets(ctx, 9)
	assert.ErrorIs(t, err, model.ErrMissingArtifact)

	_, err = p.Extractors(ctx, 5, 9)
	assert.True(t, model.IsConfigError(err))
}

func TestStoredExtractorsFromTestingPartitionAreRejected(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	require.NoError(t, p.RunTasks(ctx, []string{TaskSplit, TaskMap, TaskPartition, TaskExtractors}, nil))

	rec, err := p.store.LoadExtractors(ctx, p.config.Corpus, 0)
	require.NoError(t, err)
	rec.ID = 4
	rec.Partition = 1
	require.NoError(t, p.store.SaveExtractors(ctx, p.config.Corpus, *rec))

	_, err = p.Datasets(ctx, 4)
	assert.ErrorIs(t, err, model.ErrNotFitted)
}

func TestFetchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(table))
	}))
	defer server.Close()

	f := NewFetcher(model.ImportConfig{Timeout: 5 * time.Second, UserAgent: "test-agent", MaxBytes: 1 << 20})
	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, table, string(result.Data))

	server404 := httptest.NewServer(http.NotFoundHandler())
	defer server404.Close()
	_, err = f.Fetch(context.Background(), server404.URL)
	assert.Error(t, err)
}

func TestFetchFileLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	f := NewFetcher(model.ImportConfig{Timeout: time.Second, MaxBytes: 4})
	result, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(result.Data))

	_, err = f.Fetch(context.Background(), path+".missing")
	assert.Error(t, err)
}
