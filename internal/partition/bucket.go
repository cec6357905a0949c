package partition

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/ppiankov/commentlab/internal/model"
)

// Bucket holds the sentence ids of one (category, instance type) pair,
// indexed by stratum. Each id belongs to exactly one stratum.
type Bucket struct {
	strata map[int]*roaring64.Bitmap
}

// NewBucket creates an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{strata: make(map[int]*roaring64.Bitmap)}
}

// BucketOf builds a bucket from an id -> stratum membership map.
func BucketOf(members map[model.SentenceID]int) (*Bucket, error) {
	b := NewBucket()
	for id, stratum := range members {
		if id < 0 {
			return nil, fmt.Errorf("%w: %d", model.ErrInvalidSentenceID, id)
		}
		b.stratum(stratum).Add(uint64(id))
	}
	return b, nil
}

// Add inserts id into stratum. Adding an id already present in the same
// stratum is a no-op; adding it under a different stratum is an error.
func (b *Bucket) Add(id model.SentenceID, stratum int) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidSentenceID, id)
	}
	for s, bm := range b.strata {
		if s != stratum && bm.Contains(uint64(id)) {
			return fmt.Errorf("%w: %d already in stratum %d", model.ErrInvalidSentenceID, id, s)
		}
	}
	b.stratum(stratum).Add(uint64(id))
	return nil
}

func (b *Bucket) stratum(s int) *roaring64.Bitmap {
	bm, ok := b.strata[s]
	if !ok {
		bm = roaring64.New()
		b.strata[s] = bm
	}
	return bm
}

// Len returns the number of ids across all strata.
func (b *Bucket) Len() int {
	n := 0
	for _, bm := range b.strata {
		n += int(bm.GetCardinality())
	}
	return n
}

// Contains reports whether id is in any stratum.
func (b *Bucket) Contains(id model.SentenceID) bool {
	if id < 0 {
		return false
	}
	for _, bm := range b.strata {
		if bm.Contains(uint64(id)) {
			return true
		}
	}
	return false
}

// Strata returns the non-empty strata in ascending order.
func (b *Bucket) Strata() []int {
	strata := make([]int, 0, len(b.strata))
	for s, bm := range b.strata {
		if !bm.IsEmpty() {
			strata = append(strata, s)
		}
	}
	sort.Ints(strata)
	return strata
}

// IDs returns the ids of a stratum in ascending order.
func (b *Bucket) IDs(stratum int) []model.SentenceID {
	bm, ok := b.strata[stratum]
	if !ok {
		return nil
	}
	ids := make([]model.SentenceID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ids = append(ids, model.SentenceID(it.Next()))
	}
	return ids
}
