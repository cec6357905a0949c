package partition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/commentlab/internal/model"
)

// Percentages is the ordered share of each partition. The number of
// partitions is len(Percentages); index 0 is the training partition.
type Percentages []int

// ParsePercentages parses "80,20".
func ParsePercentages(s string) (Percentages, error) {
	var p Percentages
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", model.ErrInvalidPercentages, part)
		}
		p = append(p, v)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that p is non-empty, non-negative and sums to 100.
func (p Percentages) Validate() error {
	return model.ValidatePercentages(p)
}

func (p Percentages) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Quotas returns ceil(p_k * n / 100) for every partition. Because each
// quota is rounded up independently the sum may exceed n by up to
// len(p)-1; the round robin stops taking ids once the stratum is empty.
// Every partition with a non-zero share gets at least one slot when n > 0.
func Quotas(n int, p Percentages) []int {
	q := make([]int, len(p))
	for k, share := range p {
		q[k] = (share*n + 99) / 100
	}
	return q
}
