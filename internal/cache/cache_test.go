package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/commentlab/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok, "expected miss after delete")

	c.Set("b", 2, 0)
	c.Clear()
	assert.Zero(t, c.Len())
}

func TestExtractorsKey(t *testing.T) {
	assert.Equal(t, "commentlab:v1:java:extractors:3", ExtractorsKey("java", 3))
}

func TestExtractorsLoadsOnce(t *testing.T) {
	var loads int32
	c := NewExtractors(func(ctx context.Context, corpus string, id int) (*features.Extractors, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(10 * time.Millisecond)
		return &features.Extractors{ID: id}, nil
	}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex, err := c.Get(context.Background(), "java", 1)
			if assert.NoError(t, err) {
				assert.Equal(t, 1, ex.ID)
			}
		}()
	}
	wg.Wait()

	_, err := c.Get(context.Background(), "java", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&loads))

	c.Invalidate("java", 1)
	_, err = c.Get(context.Background(), "java", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&loads), "loads after invalidate")
}

func TestExtractorsErrorsAreNotCached(t *testing.T) {
	fail := true
	c := NewExtractors(func(ctx context.Context, corpus string, id int) (*features.Extractors, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &features.Extractors{ID: id}, nil
	}, time.Minute)

	_, err := c.Get(context.Background(), "java", 0)
	require.Error(t, err)

	fail = false
	_, err = c.Get(context.Background(), "java", 0)
	require.NoError(t, err)
}
