// Package derive builds the per-category positive and negative instance
// sets from the sentence-category mapping.
package derive

import (
	"fmt"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/partition"
)

// Members maps a sentence id to its stratum.
type Members map[model.SentenceID]int

// Instances holds the derived instance sets for an ordered category list.
type Instances struct {
	categories []string
	positives  map[string]Members
	negatives  map[string]Members

	// Ignored counts mappings whose category is not in the category list.
	Ignored int
}

// Positives groups the mapped sentence ids by category. Mappings naming an
// unknown category are skipped and counted. If the same sentence is mapped
// twice to one category, the first stratum wins.
func Positives(categories []string, mappings []model.Mapping) (map[string]Members, int) {
	positives := make(map[string]Members, len(categories))
	for _, c := range categories {
		positives[c] = make(Members)
	}
	ignored := 0
	for _, m := range mappings {
		members, ok := positives[m.Category]
		if !ok {
			ignored++
			continue
		}
		if _, seen := members[m.SentenceID]; !seen {
			members[m.SentenceID] = m.Stratum
		}
	}
	return positives, ignored
}

// ForCategory returns the negatives of c: every id positive for some other
// category and not positive for c. Insertion is idempotent, so an id
// positive for several other categories appears once. positives is only
// read, so ForCategory may run concurrently for different categories.
func ForCategory(c string, categories []string, positives map[string]Members) Members {
	own := positives[c]
	negatives := make(Members)
	for _, other := range categories {
		if other == c {
			continue
		}
		for id, stratum := range positives[other] {
			if _, isPositive := own[id]; isPositive {
				continue
			}
			if _, seen := negatives[id]; !seen {
				negatives[id] = stratum
			}
		}
	}
	return negatives
}

// Derive computes positives and negatives for every category. An empty
// category list is a configuration error; a category without mapped
// sentences gets empty sets.
func Derive(categories []string, mappings []model.Mapping) (*Instances, error) {
	if len(categories) == 0 {
		return nil, model.ErrNoCategories
	}
	positives, ignored := Positives(categories, mappings)
	inst := &Instances{
		categories: append([]string(nil), categories...),
		positives:  positives,
		negatives:  make(map[string]Members, len(categories)),
		Ignored:    ignored,
	}
	for _, c := range categories {
		inst.negatives[c] = ForCategory(c, categories, positives)
	}
	return inst, nil
}

// Categories returns the ordered category list.
func (i *Instances) Categories() []string {
	return append([]string(nil), i.categories...)
}

// Members returns the id -> stratum set of one category and instance type.
func (i *Instances) Members(category string, it model.InstanceType) Members {
	if it == model.Positive {
		return i.positives[category]
	}
	return i.negatives[category]
}

// Bucket returns the stratified bucket of one category and instance type.
// A negative sentence id yields a data error.
func (i *Instances) Bucket(category string, it model.InstanceType) (*partition.Bucket, error) {
	if _, ok := i.positives[category]; !ok {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrConfig, category)
	}
	b, err := partition.BucketOf(i.Members(category, it))
	if err != nil {
		return nil, fmt.Errorf("bucket %s/%s: %w", category, it, err)
	}
	return b, nil
}
