package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/commentlab/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_ProcessCategories(t *testing.T) {
	processor := NewBatchProcessor("partition", 2, logging.Nop())
	categories := []string{"summary", "usage", "expand", "pointer"}

	results := processor.ProcessCategories(context.Background(), categories, func(ctx context.Context, category string) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return len(category), nil
	})

	require.Len(t, results, len(categories))
	for i, res := range results {
		assert.Equal(t, categories[i], res.Category, "result %d", i)
		assert.NoError(t, res.Error)
		assert.Equal(t, len(res.Category), res.Count)
	}
}

func TestBatchProcessor_FailureIsolated(t *testing.T) {
	processor := NewBatchProcessor("datasets", 3, nil)
	categories := []string{"a", "b", "c", "d"}

	var ran int32
	results := processor.ProcessCategories(context.Background(), categories, func(ctx context.Context, category string) (int, error) {
		atomic.AddInt32(&ran, 1)
		switch category {
		case "b":
			return 0, errors.New("missing sentence")
		case "c":
			panic("boom")
		}
		return 1, nil
	})

	assert.EqualValues(t, 4, atomic.LoadInt32(&ran), "every category runs")
	failed := Failed(results)
	require.Len(t, failed, 2)
	assert.Equal(t, "b", failed[0].Category)
	assert.Equal(t, "c", failed[1].Category)
	assert.Contains(t, failed[1].Error.Error(), "panic")
	assert.NoError(t, results[3].Error)
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor("partition", 2, nil)
	assert.Empty(t, processor.ProcessCategories(context.Background(), nil, nil))
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor("partition", 1, nil)
	results := processor.ProcessCategories(ctx, []string{"a", "b"}, func(ctx context.Context, category string) (int, error) {
		return 1, nil
	})
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Error(t, res.Error, res.Category)
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("split", 3, time.Hour, nil)
	ctx := context.Background()
	p.Done(ctx, nil)
	p.Done(ctx, errors.New("x"))
	p.Done(ctx, nil)

	done, failed := p.Counts()
	assert.Equal(t, 3, done)
	assert.Equal(t, 1, failed)
}
