package model

import "fmt"

// SentenceID identifies a comment sentence. IDs are assigned once by the
// split task and never change afterwards.
type SentenceID int64

// Sentence is a single comment sentence with its grouping keys.
type Sentence struct {
	ID      SentenceID `json:"id"`
	Class   string     `json:"class"`   // Source entity the comment belongs to
	Stratum int        `json:"stratum"` // Grouping key, e.g. originating project
	Text    string     `json:"text"`
}

// Mapping relates a comment sentence to one category it was classified as.
// A sentence may appear in several mappings, one per category.
type Mapping struct {
	SentenceID SentenceID `json:"sentence_id"`
	Category   string     `json:"category"`
	Stratum    int        `json:"stratum"`
}

// InstanceType marks whether a sentence is a positive or a negative example
// for a category-specific binary dataset.
type InstanceType int

const (
	Negative InstanceType = 0 // Mapped to another category only
	Positive InstanceType = 1 // Mapped to the category
)

// InstanceTypes lists both instance types in label order.
var InstanceTypes = []InstanceType{Positive, Negative}

func (t InstanceType) String() string {
	switch t {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// Label returns the dataset label for the instance type (1 or 0).
func (t InstanceType) Label() int {
	if t == Positive {
		return 1
	}
	return 0
}

// ParseInstanceType accepts "positive"/"negative" as well as the stored
// labels "1"/"0".
func ParseInstanceType(s string) (InstanceType, error) {
	switch s {
	case "positive", "1":
		return Positive, nil
	case "negative", "0":
		return Negative, nil
	}
	return 0, fmt.Errorf("%w: instance type %q", ErrData, s)
}

// Assignment places one sentence of a (category, instance type) bucket into
// a partition. Partition 0 is training; every other partition is testing.
type Assignment struct {
	SentenceID   SentenceID   `json:"sentence_id"`
	Category     string       `json:"category"`
	InstanceType InstanceType `json:"instance_type"`
	Partition    int          `json:"partition"`
}

// TrainingPartition is the partition whose statistics fit the feature
// extractors of every other partition.
const TrainingPartition = 0
