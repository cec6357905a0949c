package model

import "fmt"

// Dataset is the feature matrix for one (category, partition) pair.
type Dataset struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Partition           int      `json:"partition"`
	ExtractorsPartition int      `json:"extractors_partition"`
	LabelAttribute      string   `json:"label_attribute"` // e.g. "category-summary"
	Features            []string `json:"features"`        // Feature attribute names, in column order
	Rows                []Row    `json:"rows"`
}

// Row is one sparse instance. Index holds positions into Dataset.Features
// in ascending order; Value holds the matching non-zero values.
type Row struct {
	SentenceID SentenceID `json:"sentence_id"`
	Label      int        `json:"label"`
	Index      []int      `json:"index,omitempty"`
	Value      []float64  `json:"value,omitempty"`
}

// DatasetName returns the relation name used for a dataset.
func DatasetName(corpus string, extractorsPartition, partition int) string {
	return fmt.Sprintf("%s-features-%d-%d", corpus, extractorsPartition, partition)
}

// LabelAttributeName returns the label attribute for a category.
func LabelAttributeName(category string) string {
	return "category-" + category
}

// Counts returns the number of positive and negative rows.
func (d *Dataset) Counts() (positives, negatives int) {
	for _, r := range d.Rows {
		if r.Label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}

// Degenerate reports whether the dataset cannot train or evaluate a binary
// classifier: it is empty or all rows carry the same label.
func (d *Dataset) Degenerate() bool {
	pos, neg := d.Counts()
	return pos == 0 || neg == 0
}

// Dense expands row i into a full feature vector.
func (d *Dataset) Dense(i int) []float64 {
	out := make([]float64, len(d.Features))
	r := d.Rows[i]
	for j, idx := range r.Index {
		out[idx] = r.Value[j]
	}
	return out
}
