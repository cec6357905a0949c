package partition

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Slot is one id placed into one partition.
type Slot struct {
	ID        uint64
	Partition int
}

// RoundRobin distributes ids over len(quotas) partitions. The cursor starts
// at partition 0 and moves one step per iteration. A partition with quota
// left takes the id chosen by picker; its quota is spent even when no id
// remains, which keeps the split within ceil(P_k*n/100) per partition.
// ids is not modified.
func RoundRobin(ids *roaring64.Bitmap, quotas []int, picker Picker) []Slot {
	if len(quotas) == 0 || ids.IsEmpty() {
		return nil
	}
	remaining := ids.Clone()
	left := append([]int(nil), quotas...)
	total := 0
	for _, q := range left {
		total += q
	}

	slots := make([]Slot, 0, remaining.GetCardinality())
	for cursor := 0; total > 0; cursor = (cursor + 1) % len(left) {
		if left[cursor] == 0 {
			continue
		}
		if !remaining.IsEmpty() {
			id := picker.Pick(remaining)
			remaining.Remove(id)
			slots = append(slots, Slot{ID: id, Partition: cursor})
		}
		left[cursor]--
		total--
	}
	return slots
}
