// Package assemble joins partition assignments with sentence text and turns
// them into per-category feature datasets.
//
// Assembly is two-phase. AssembleTraining fits the TF-IDF statistics on the
// training partition and returns them as a Fitted value; AssembleTesting
// only accepts a Fitted value from the same category and extractors
// partition, so testing data never influences the statistics.
package assemble

import (
	"fmt"
	"sort"

	"github.com/ppiankov/commentlab/internal/extract"
	"github.com/ppiankov/commentlab/internal/features"
	"github.com/ppiankov/commentlab/internal/model"
)

// Texts looks up sentence text by id.
type Texts interface {
	Text(id model.SentenceID) (string, bool)
}

// TextMap is an in-memory Texts.
type TextMap map[model.SentenceID]string

// Text implements Texts.
func (m TextMap) Text(id model.SentenceID) (string, bool) {
	s, ok := m[id]
	return s, ok
}

// Fitted carries the statistics of a training partition to the testing
// partitions of the same category.
type Fitted struct {
	category     string
	extractorsID int
	idf          *features.IDF
}

// Category returns the category the statistics were fitted for.
func (f *Fitted) Category() string { return f.category }

// Docs returns the number of training sentences.
func (f *Fitted) Docs() int { return f.idf.Docs() }

// Assembler builds datasets for one corpus and one extractors partition.
type Assembler struct {
	corpus     string
	extractors *features.Extractors
	matcher    *extract.PatternMatcher
	features   []string
	heuristic  map[string]int
}

// New prepares an Assembler. Missing extractors or patterns that do not
// fit the category list are configuration errors.
func New(corpus string, categories []string, ex *features.Extractors) (*Assembler, error) {
	if ex == nil || ex.Vocabulary == nil || ex.Patterns == nil {
		return nil, fmt.Errorf("%w: no extractors for corpus %s", model.ErrMissingArtifact, corpus)
	}
	if ex.Partition != model.TrainingPartition {
		return nil, fmt.Errorf("%w: extractors %d were fitted on partition %d, not the training partition",
			model.ErrNotFitted, ex.ID, ex.Partition)
	}
	matcher, err := ex.Matcher(categories)
	if err != nil {
		return nil, err
	}

	a := &Assembler{
		corpus:     corpus,
		extractors: ex,
		matcher:    matcher,
		heuristic:  make(map[string]int),
	}
	for i, name := range matcher.Features() {
		a.heuristic[name] = i
		a.features = append(a.features, name)
	}
	for _, w := range ex.Vocabulary.Words() {
		a.features = append(a.features, features.TFIDFFeatureName(w))
	}
	return a, nil
}

// Features returns the attribute names in column order: heuristic features
// first, then one tfidf feature per vocabulary word.
func (a *Assembler) Features() []string {
	return a.features
}

type instance struct {
	id     model.SentenceID
	label  int
	text   string
	tokens []string
}

// collect selects the assignments of (category, partition), orders them
// positives first then negatives, ascending by id, and resolves their text.
func collect(category string, partition int, assignments []model.Assignment, texts Texts) ([]instance, error) {
	var selected []model.Assignment
	for _, as := range assignments {
		if as.Category == category && as.Partition == partition {
			selected = append(selected, as)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].InstanceType != selected[j].InstanceType {
			return selected[i].InstanceType == model.Positive
		}
		return selected[i].SentenceID < selected[j].SentenceID
	})

	out := make([]instance, 0, len(selected))
	for _, as := range selected {
		text, ok := texts.Text(as.SentenceID)
		if !ok {
			return nil, fmt.Errorf("%w: sentence %d (category %s, partition %d)",
				model.ErrMissingSentence, as.SentenceID, category, partition)
		}
		out = append(out, instance{
			id:     as.SentenceID,
			label:  as.InstanceType.Label(),
			text:   text,
			tokens: features.Tokenize(text),
		})
	}
	return out, nil
}

// AssembleTraining builds the training dataset of category and fits the
// statistics every testing partition of the category must reuse.
func (a *Assembler) AssembleTraining(category string, assignments []model.Assignment, texts Texts) (*model.Dataset, *Fitted, error) {
	instances, err := collect(category, model.TrainingPartition, assignments, texts)
	if err != nil {
		return nil, nil, err
	}
	tokens := make([][]string, len(instances))
	for i, in := range instances {
		tokens[i] = in.tokens
	}
	fitted := &Fitted{
		category:     category,
		extractorsID: a.extractors.ID,
		idf:          features.FitIDF(a.extractors.Vocabulary, tokens),
	}
	return a.build(category, model.TrainingPartition, instances, fitted), fitted, nil
}

// AssembleTesting builds the dataset of a testing partition with the
// statistics of the training partition. It never refits.
func (a *Assembler) AssembleTesting(fitted *Fitted, category string, partition int, assignments []model.Assignment, texts Texts) (*model.Dataset, error) {
	if fitted == nil || fitted.category != category || fitted.extractorsID != a.extractors.ID {
		return nil, fmt.Errorf("%w: category %s, extractors %d", model.ErrNotFitted, category, a.extractors.ID)
	}
	if partition == model.TrainingPartition {
		return nil, fmt.Errorf("%w: partition %d is the training partition", model.ErrConfig, partition)
	}
	instances, err := collect(category, partition, assignments, texts)
	if err != nil {
		return nil, err
	}
	return a.build(category, partition, instances, fitted), nil
}

func (a *Assembler) build(category string, partition int, instances []instance, fitted *Fitted) *model.Dataset {
	d := &model.Dataset{
		Name:                model.DatasetName(a.corpus, a.extractors.ID, partition),
		Category:            category,
		Partition:           partition,
		ExtractorsPartition: a.extractors.ID,
		LabelAttribute:      model.LabelAttributeName(category),
		Features:            a.features,
		Rows:                make([]model.Row, 0, len(instances)),
	}
	offset := len(a.heuristic)
	for _, in := range instances {
		row := model.Row{SentenceID: in.id, Label: in.label}
		for _, m := range a.matcher.Match(in.text) {
			row.Index = append(row.Index, a.heuristic[m.FeatureName()])
			row.Value = append(row.Value, 1)
		}
		index, values := fitted.idf.Vectorize(a.extractors.Vocabulary, in.tokens)
		for i, idx := range index {
			row.Index = append(row.Index, offset+idx)
			row.Value = append(row.Value, values[i])
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// Result is the outcome of one (category, partition) unit.
type Result struct {
	Category  string
	Partition int
	Dataset   *model.Dataset
	Err       error
}

// AssembleCategory runs both phases for one category over partitions
// 0..partitions-1. A failing unit is reported in its Result; the testing
// partitions cannot be built when the training partition fails.
func (a *Assembler) AssembleCategory(category string, partitions int, assignments []model.Assignment, texts Texts) []Result {
	results := make([]Result, 0, partitions)

	train, fitted, err := a.AssembleTraining(category, assignments, texts)
	results = append(results, Result{Category: category, Partition: model.TrainingPartition, Dataset: train, Err: err})

	for p := model.TrainingPartition + 1; p < partitions; p++ {
		r := Result{Category: category, Partition: p}
		if err != nil {
			r.Err = fmt.Errorf("%w: training partition failed: %v", model.ErrNotFitted, err)
		} else {
			r.Dataset, r.Err = a.AssembleTesting(fitted, category, p, assignments, texts)
		}
		results = append(results, r)
	}
	return results
}
