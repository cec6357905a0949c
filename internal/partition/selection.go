package partition

import (
	"fmt"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/ppiankov/commentlab/internal/model"
)

// Picker chooses the next id to take from the remaining ids of a stratum.
// remaining is never empty when Pick is called.
type Picker interface {
	Pick(remaining *roaring64.Bitmap) uint64
}

// Selection creates the Picker for one stratum. Strata run concurrently,
// so every stratum gets its own Picker.
type Selection func(stratum int) Picker

type lowestPicker struct{}

func (lowestPicker) Pick(remaining *roaring64.Bitmap) uint64 {
	return remaining.Minimum()
}

// SelectLowest always takes the smallest remaining id. It is the default;
// the same input yields the same split on every run.
func SelectLowest() Selection {
	return func(int) Picker { return lowestPicker{} }
}

type randomPicker struct {
	rng *rand.Rand
}

func (p *randomPicker) Pick(remaining *roaring64.Bitmap) uint64 {
	n := int64(remaining.GetCardinality())
	id, err := remaining.Select(uint64(p.rng.Int63n(n)))
	if err != nil {
		return remaining.Minimum()
	}
	return id
}

// SelectRandom takes a uniformly random remaining id. Each stratum is
// seeded with seed+stratum, so a fixed seed still reproduces the split.
func SelectRandom(seed int64) Selection {
	return func(stratum int) Picker {
		return &randomPicker{rng: rand.New(rand.NewSource(seed + int64(stratum)))}
	}
}

// SelectionByName maps the configuration value to a Selection.
func SelectionByName(name string, seed int64) (Selection, error) {
	switch name {
	case "", "lowest":
		return SelectLowest(), nil
	case "random":
		return SelectRandom(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown selection %q (expected lowest|random)", model.ErrConfig, name)
	}
}
