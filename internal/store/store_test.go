package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.ImportComments(ctx, "java", []string{"summary", "usage"}, []Comment{
		{ID: 1, Class: "List", Stratum: 0, Comment: "returns a list. use it.", Categories: map[string]string{"summary": "returns a list.", "usage": "use it."}},
		{ID: 2, Class: "Map", Stratum: 1, Comment: "a map.", Categories: map[string]string{"summary": "a map."}},
	}))
	require.NoError(t, s.ReplaceSentences(ctx, "java", []SentenceRecord{
		{ID: 1, Kind: KindComment, CommentID: 1, Class: "List", Stratum: 0, Text: "returns a list."},
		{ID: 2, Kind: KindComment, CommentID: 1, Class: "List", Stratum: 0, Text: "use it."},
		{ID: 3, Kind: KindComment, CommentID: 2, Class: "Map", Stratum: 1, Text: "a map."},
		{ID: 4, Kind: KindCategory, CommentID: 1, Class: "List", Stratum: 0, Category: "summary", Text: "returns a list."},
	}))
}

func TestImportAndComments(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	categories, err := s.Categories(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "usage"}, categories)

	comments, err := s.Comments(ctx, "java")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "use it.", comments[0].Categories["usage"])
	assert.Equal(t, 1, comments[1].Stratum)

	other, err := s.Categories(ctx, "pharo")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSentencesAndMappings(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	comment, err := s.Sentences(ctx, "java", KindComment)
	require.NoError(t, err)
	assert.Len(t, comment, 3)

	texts, err := s.SentenceTexts(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, "a map.", texts[3])
	_, hasCategorySentence := texts[4]
	assert.False(t, hasCategorySentence)

	require.NoError(t, s.ReplaceMappings(ctx, "java", []MappingRecord{
		{CommentSentenceID: 1, CategorySentenceID: 4, Category: "summary", Strategy: "equals", Similarity: 1},
		{CommentSentenceID: 1, CategorySentenceID: 4, Category: "summary", Strategy: "contains", Similarity: 1},
		{CommentSentenceID: 3, CategorySentenceID: 4, Category: "usage", Strategy: "contains", Similarity: 0.5},
	}))

	mappings, err := s.Mappings(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, []model.Mapping{
		{SentenceID: 1, Category: "summary", Stratum: 0},
		{SentenceID: 3, Category: "usage", Stratum: 1},
	}, mappings)

	stats, err := s.MappingStats(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"equals": 1, "contains": 2}, stats)
}

func TestPartitionAssignments(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	run, err := s.BeginPartitionRun(ctx, "java", []int{80, 20}, "lowest")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	require.NoError(t, s.AppendAssignments(ctx, "java", run.ID, []model.Assignment{
		{SentenceID: 1, Category: "summary", InstanceType: model.Positive, Partition: 0},
		{SentenceID: 3, Category: "summary", InstanceType: model.Negative, Partition: 1},
		{SentenceID: 2, Category: "summary", InstanceType: model.Negative, Partition: 0},
	}))

	all, err := s.Assignments(ctx, "java", "summary")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.SentenceID(1), all[0].SentenceID)
	assert.Equal(t, model.Positive, all[0].InstanceType)

	test, err := s.AssignmentsByPartition(ctx, "java", "summary", 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Assignment{{SentenceID: 3, Category: "summary", InstanceType: model.Negative, Partition: 1}}, test)

	counts, err := s.PartitionCounts(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 2, 1: 1}, counts)

	texts, err := s.PartitionTexts(ctx, "java", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"returns a list.", "use it."}, texts)

	view, err := s.PartitionSentences(ctx, "java")
	require.NoError(t, err)
	assert.Equal(t, []PartitionSentence{{Class: "List", Sentence: "returns a list.", Partition: 0, Category: "summary"}}, view)

	// The same (category, instance type, sentence) cannot be assigned twice.
	err = s.AppendAssignments(ctx, "java", run.ID, []model.Assignment{
		{SentenceID: 1, Category: "summary", InstanceType: model.Positive, Partition: 1},
	})
	assert.Error(t, err)

	runs, err := s.PartitionRuns(ctx, "java")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []int{80, 20}, runs[0].Percentages)

	// A new run starts from an empty assignment table.
	_, err = s.BeginPartitionRun(ctx, "java", []int{50, 50}, "lowest")
	require.NoError(t, err)
	all, err = s.Assignments(ctx, "java", "summary")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExtractorsAndDatasets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LoadExtractors(ctx, "java", 0)
	require.ErrorIs(t, err, model.ErrMissingArtifact)

	require.NoError(t, s.SaveExtractors(ctx, "java", ExtractorsRecord{ID: 0, Partition: 0, Vocabulary: []byte("list,1\n"), Patterns: []byte("patterns: []\n")}))
	require.NoError(t, s.SaveExtractors(ctx, "java", ExtractorsRecord{ID: 0, Partition: 0, Vocabulary: []byte("map,2\n"), Patterns: []byte("patterns: []\n")}))
	ex, err := s.LoadExtractors(ctx, "java", 0)
	require.NoError(t, err)
	assert.Equal(t, "map,2\n", string(ex.Vocabulary))

	rec := DatasetRecord{Partition: 0, ExtractorsPartition: 0, Category: "summary", Compression: "zstd", Rows: 2, Positives: 2, Degenerate: true, Blob: []byte{1, 2, 3}}
	require.NoError(t, s.SaveDataset(ctx, "java", rec))
	require.NoError(t, s.SaveDataset(ctx, "java", DatasetRecord{Partition: 1, ExtractorsPartition: 0, Category: "summary", Compression: "none", Rows: 1, Negatives: 1, Degenerate: true, Blob: []byte{4}}))

	withBlob, err := s.Datasets(ctx, "java", 0, true)
	require.NoError(t, err)
	require.Len(t, withBlob, 2)
	assert.Equal(t, rec, withBlob[0])

	summaries, err := s.Datasets(ctx, "java", 0, false)
	require.NoError(t, err)
	assert.Empty(t, summaries[1].Blob)
	assert.True(t, summaries[1].Degenerate)
}
