package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
)

// ImportReport summarizes the import task.
type ImportReport struct {
	Source     string
	Categories []string
	Comments   int
	Skipped    int
}

func (r *ImportReport) Task() string { return "import" }
func (r *ImportReport) Failed() int  { return r.Skipped }

// ParseTable reads the raw comment table: a header with class, stratum and
// comment columns, every other column being a category whose cells hold the
// part of the comment classified under it. Categories are returned in
// ascending order. Rows with a non-integer stratum are skipped and counted.
func ParseTable(r io.Reader) ([]string, []store.Comment, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: read header: %v", model.ErrConfig, err)
	}
	col := map[string]int{"class": -1, "stratum": -1, "comment": -1}
	categoryCols := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		if _, fixed := col[strings.ToLower(name)]; fixed {
			col[strings.ToLower(name)] = i
			continue
		}
		if name != "" {
			categoryCols[name] = i
		}
	}
	for name, i := range col {
		if i < 0 {
			return nil, nil, 0, fmt.Errorf("%w: missing %q column", model.ErrConfig, name)
		}
	}

	categories := make([]string, 0, len(categoryCols))
	for c := range categoryCols {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	cell := func(record []string, i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var comments []store.Comment
	skipped := 0
	for id := int64(1); ; id++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: row %d: %v", model.ErrData, id, err)
		}
		stratum, err := strconv.Atoi(cell(record, col["stratum"]))
		if err != nil {
			skipped++
			continue
		}
		c := store.Comment{
			ID:         id,
			Class:      cell(record, col["class"]),
			Stratum:    stratum,
			Comment:    cell(record, col["comment"]),
			Categories: make(map[string]string),
		}
		for _, category := range categories {
			if text := cell(record, categoryCols[category]); text != "" {
				c.Categories[category] = text
			}
		}
		comments = append(comments, c)
	}
	return categories, comments, skipped, nil
}

// Import loads the raw comment table from source (file path or URL) and
// replaces the corpus' comments and categories.
func (p *Pipeline) Import(ctx context.Context, source string) (*ImportReport, error) {
	fetched, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	categories, comments, skipped, err := ParseTable(bytes.NewReader(fetched.Data))
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w (no category columns in %s)", model.ErrNoCategories, fetched.Source)
	}
	if err := p.store.ImportComments(ctx, p.config.Corpus, categories, comments); err != nil {
		return nil, err
	}
	if skipped > 0 {
		p.logger.WarnContext(ctx, "rows skipped", "task", "import", "skipped", skipped)
	}
	return &ImportReport{
		Source:     fetched.Source,
		Categories: categories,
		Comments:   len(comments),
		Skipped:    skipped,
	}, nil
}
