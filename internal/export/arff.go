// Package export writes datasets and partition views to a directory or an
// S3-compatible bucket.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/store"
)

// DatasetFileName returns "<partition>-<extractors_partition>-<category>.arff".
func DatasetFileName(d *model.Dataset) string {
	return fmt.Sprintf("%d-%d-%s.arff", d.Partition, d.ExtractorsPartition, d.Category)
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

// WriteARFF writes d as a sparse ARFF file. The label attribute comes first
// and is always written; features follow in dataset column order.
func WriteARFF(w io.Writer, d *model.Dataset) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "@relation %s\n\n", quote(d.Name))
	fmt.Fprintf(bw, "@attribute %s {0,1}\n", quote(d.LabelAttribute))
	for _, f := range d.Features {
		fmt.Fprintf(bw, "@attribute %s numeric\n", quote(f))
	}
	bw.WriteString("\n@data\n")

	for _, r := range d.Rows {
		bw.WriteString("{0 ")
		bw.WriteString(strconv.Itoa(r.Label))
		for i, idx := range r.Index {
			bw.WriteByte(',')
			bw.WriteString(strconv.Itoa(idx + 1))
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(r.Value[i], 'g', -1, 64))
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}

// WritePartitionSentences writes the partition sentences view as CSV with
// a class,sentence,partition,category header.
func WritePartitionSentences(w io.Writer, rows []store.PartitionSentence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"class", "sentence", "partition", "category"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Class, r.Sentence, strconv.Itoa(r.Partition), r.Category}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
