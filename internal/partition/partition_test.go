package partition

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucket(t *testing.T, strata map[int][]model.SentenceID) *Bucket {
	t.Helper()
	b := NewBucket()
	for s, ids := range strata {
		for _, id := range ids {
			require.NoError(t, b.Add(id, s))
		}
	}
	return b
}

func byPartition(assignments []model.Assignment) map[int][]model.SentenceID {
	out := make(map[int][]model.SentenceID)
	for _, a := range assignments {
		out[a.Partition] = append(out[a.Partition], a.SentenceID)
	}
	return out
}

func TestQuotas(t *testing.T) {
	tests := []struct {
		n    int
		p    Percentages
		want []int
	}{
		{5, Percentages{80, 20}, []int{4, 1}},
		{3, Percentages{80, 20}, []int{3, 1}},
		{2, Percentages{80, 20}, []int{2, 1}},
		{0, Percentages{80, 20}, []int{0, 0}},
		{10, Percentages{100, 0}, []int{10, 0}},
		{7, Percentages{50, 30, 20}, []int{4, 3, 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quotas(tt.n, tt.p), "n=%d p=%v", tt.n, tt.p)
	}
}

func TestParsePercentages(t *testing.T) {
	p, err := ParsePercentages("80, 20")
	require.NoError(t, err)
	assert.Equal(t, Percentages{80, 20}, p)
	assert.Equal(t, "80,20", p.String())

	for _, bad := range []string{"", "80,30", "120,-20", "eighty,20"} {
		_, err := ParsePercentages(bad)
		assert.ErrorIs(t, err, model.ErrInvalidPercentages, "input %q", bad)
		assert.True(t, model.IsConfigError(err))
	}
}

func TestNewRejectsInvalidPercentages(t *testing.T) {
	_, err := New(Percentages{70, 20})
	require.ErrorIs(t, err, model.ErrInvalidPercentages)
}

func TestPartitionSingleStratum(t *testing.T) {
	b := bucket(t, map[int][]model.SentenceID{0: {1, 2, 3, 4, 5}})

	got, err := Partition(context.Background(), "X", model.Positive, b, Percentages{80, 20})
	require.NoError(t, err)

	parts := byPartition(got)
	assert.Equal(t, []model.SentenceID{1, 3, 4, 5}, parts[0])
	assert.Equal(t, []model.SentenceID{2}, parts[1])
	for _, a := range got {
		assert.Equal(t, "X", a.Category)
		assert.Equal(t, model.Positive, a.InstanceType)
	}
}

func TestPartitionStrataInOrder(t *testing.T) {
	b := bucket(t, map[int][]model.SentenceID{
		1: {10, 11, 12},
		2: {20, 21},
	})

	got, err := Partition(context.Background(), "Y", model.Positive, b, Percentages{80, 20})
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Stratum 1 comes first: 2 train + 1 test, then stratum 2: 1 train + 1 test.
	want := []model.Assignment{
		{SentenceID: 10, Category: "Y", InstanceType: model.Positive, Partition: 0},
		{SentenceID: 11, Category: "Y", InstanceType: model.Positive, Partition: 1},
		{SentenceID: 12, Category: "Y", InstanceType: model.Positive, Partition: 0},
		{SentenceID: 20, Category: "Y", InstanceType: model.Positive, Partition: 0},
		{SentenceID: 21, Category: "Y", InstanceType: model.Positive, Partition: 1},
	}
	assert.Equal(t, want, got)
}

func TestPartitionCoverageAndDisjointness(t *testing.T) {
	strata := map[int][]model.SentenceID{}
	var all []model.SentenceID
	for s := 0; s < 6; s++ {
		for i := 0; i < 3+s*7; i++ {
			id := model.SentenceID(s*1000 + i)
			strata[s] = append(strata[s], id)
			all = append(all, id)
		}
	}
	b := bucket(t, strata)

	for _, p := range []Percentages{{80, 20}, {50, 50}, {34, 33, 33}, {100, 0}, {0, 100}} {
		got, err := Partition(context.Background(), "c", model.Negative, b, p)
		require.NoError(t, err)

		seen := make(map[model.SentenceID]int)
		for _, a := range got {
			seen[a.SentenceID]++
			require.Less(t, a.Partition, len(p))
			assert.NotZero(t, p[a.Partition], "id %d landed in a zero-share partition", a.SentenceID)
		}
		assert.Len(t, seen, len(all), "p=%v", p)
		for _, id := range all {
			assert.Equal(t, 1, seen[id], "id %d with p=%v", id, p)
		}
	}
}

func TestPartitionZeroShareGetsNothing(t *testing.T) {
	b := bucket(t, map[int][]model.SentenceID{0: {1, 2, 3}, 1: {4}})
	got, err := Partition(context.Background(), "c", model.Positive, b, Percentages{100, 0})
	require.NoError(t, err)
	assert.Len(t, byPartition(got)[0], 4)
	assert.Empty(t, byPartition(got)[1])
}

func TestPartitionProportionalityBound(t *testing.T) {
	for n := 1; n <= 40; n++ {
		ids := make([]model.SentenceID, n)
		for i := range ids {
			ids[i] = model.SentenceID(i + 1)
		}
		b := bucket(t, map[int][]model.SentenceID{0: ids})
		p := Percentages{80, 20}

		got, err := Partition(context.Background(), "c", model.Positive, b, p)
		require.NoError(t, err)

		parts := byPartition(got)
		q := Quotas(n, p)
		assert.Equal(t, n, len(parts[0])+len(parts[1]), "n=%d", n)
		assert.LessOrEqual(t, len(parts[0]), q[0], "n=%d", n)
		assert.LessOrEqual(t, len(parts[1]), q[1], "n=%d", n)
		assert.NotEmpty(t, parts[0], "n=%d", n)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	b := bucket(t, map[int][]model.SentenceID{
		0: {5, 3, 9, 1},
		3: {40, 41, 42, 43, 44, 45},
		7: {70},
	})
	p, err := New(Percentages{80, 20}, WithStrataWorkers(2))
	require.NoError(t, err)

	first, err := p.Partition(context.Background(), "c", model.Positive, b)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := p.Partition(context.Background(), "c", model.Positive, b)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestPartitionRandomSelectionIsSeeded(t *testing.T) {
	ids := make([]model.SentenceID, 50)
	for i := range ids {
		ids[i] = model.SentenceID(i)
	}
	b := bucket(t, map[int][]model.SentenceID{0: ids})

	run := func(seed int64) []model.Assignment {
		p, err := New(Percentages{80, 20}, WithSelection(SelectRandom(seed)))
		require.NoError(t, err)
		got, err := p.Partition(context.Background(), "c", model.Positive, b)
		require.NoError(t, err)
		return got
	}
	a, b2 := run(42), run(42)
	assert.Equal(t, a, b2)
	assert.Len(t, a, 50)
	assert.Len(t, byPartition(a)[1], 10)
}

func TestPartitionEmptyBucket(t *testing.T) {
	got, err := Partition(context.Background(), "c", model.Negative, NewBucket(), Percentages{80, 20})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Partition(context.Background(), "c", model.Negative, nil, Percentages{80, 20})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPartitionCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := bucket(t, map[int][]model.SentenceID{0: {1, 2}})
	_, err := Partition(ctx, "c", model.Positive, b, Percentages{80, 20})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPartitionCategory(t *testing.T) {
	pos := bucket(t, map[int][]model.SentenceID{0: {1, 2}})
	neg := bucket(t, map[int][]model.SentenceID{0: {3, 4}})
	p, err := New(Percentages{50, 50})
	require.NoError(t, err)

	got, err := p.PartitionCategory(context.Background(), "A", pos, neg)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, model.Positive, got[0].InstanceType)
	assert.Equal(t, model.Negative, got[3].InstanceType)
}

func TestRoundRobinLeavesInputUntouched(t *testing.T) {
	ids := roaring64.BitmapOf(1, 2, 3)
	slots := RoundRobin(ids, []int{3, 1}, SelectLowest()(0))
	assert.Len(t, slots, 3)
	assert.Equal(t, uint64(3), ids.GetCardinality())
}

func TestBucketRejectsConflictingStratum(t *testing.T) {
	b := NewBucket()
	require.NoError(t, b.Add(1, 0))
	require.NoError(t, b.Add(1, 0))
	assert.ErrorIs(t, b.Add(1, 2), model.ErrInvalidSentenceID)
	assert.ErrorIs(t, b.Add(-1, 0), model.ErrInvalidSentenceID)
	assert.Equal(t, 1, b.Len())
	assert.True(t, b.Contains(1))
}

func TestSelectionByName(t *testing.T) {
	_, err := SelectionByName("lowest", 0)
	require.NoError(t, err)
	_, err = SelectionByName("random", 1)
	require.NoError(t, err)
	_, err = SelectionByName("first", 0)
	assert.True(t, model.IsConfigError(err))
}
