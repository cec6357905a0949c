// Package render prints task summaries to the terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/commentlab/internal/pipeline"
)

const rule = "═══════════════════════════════════════════════════════════"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// Banner prints a title between two rules followed by key/value lines.
func Banner(w io.Writer, title string, fields ...[2]string) {
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n\n", rule, titleStyle.Render(title), rule)
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0])+1)
	}
	for _, f := range fields {
		fmt.Fprintf(w, "  %-*s %s\n", width, f[0]+":", f[1])
	}
	if len(fields) > 0 {
		fmt.Fprintln(w)
	}
}

// OK prints a success line.
func OK(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", okStyle.Render("✓"), fmt.Sprintf(format, a...))
}

// Fail prints a failure line.
func Fail(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", failStyle.Render("✗"), fmt.Sprintf(format, a...))
}

// Warn prints a warning line.
func Warn(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("⚠"), fmt.Sprintf(format, a...))
}

// Table renders rows under header with aligned columns.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(widths))
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			parts[i] = style.Width(widths[i] + 2).Render(c)
		}
		b.WriteString("  ")
		b.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " "))
		b.WriteByte('\n')
	}
	line(header, headerStyle)
	for _, r := range rows {
		line(r, cellStyle)
	}
	return b.String()
}

// Report prints the summary of one task report.
func Report(w io.Writer, r pipeline.Report) {
	switch r := r.(type) {
	case *pipeline.ImportReport:
		OK(w, "Imported %d comments with %d categories from %s", r.Comments, len(r.Categories), r.Source)
		if r.Skipped > 0 {
			Warn(w, "Skipped %d rows with an invalid stratum", r.Skipped)
		}
	case *pipeline.SplitReport:
		OK(w, "Split %d comments into %d comment sentences and %d category sentences",
			r.Comments, r.CommentSentences, r.CategorySentences)
	case *pipeline.MapReport:
		OK(w, "Mapped %d of %d comment sentences", r.Mapped, r.CommentSentences)
		strategies := make([]string, 0, len(r.ByStrategy))
		for s := range r.ByStrategy {
			strategies = append(strategies, s)
		}
		sort.Strings(strategies)
		for _, s := range strategies {
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(s+":"), strconv.Itoa(r.ByStrategy[s]))
		}
	case *pipeline.PartitionReport:
		partitionReport(w, r)
	case *pipeline.ExtractorsReport:
		OK(w, "Extractors %d: %d words from %d sentences of partition %d, %d patterns",
			r.ID, r.Words, r.Sentences, r.Partition, r.Patterns)
	case *pipeline.DatasetsReport:
		datasetsReport(w, r)
	case *pipeline.ExportReport:
		OK(w, "Exported %d files", len(r.Files))
		for _, f := range r.Files {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render(f))
		}
	default:
		OK(w, "%s: %d failed", r.Task(), r.Failed())
	}
}

func partitionReport(w io.Writer, r *pipeline.PartitionReport) {
	header := []string{"CATEGORY"}
	for i, p := range r.Percentages {
		header = append(header, fmt.Sprintf("P%d (%d%%) +/-", i, p))
	}
	var rows [][]string
	for _, c := range r.Categories {
		row := []string{c.Category}
		if c.Err != nil {
			row = append(row, failStyle.Render(c.Err.Error()))
			rows = append(rows, row)
			continue
		}
		for i := range c.Positives {
			row = append(row, fmt.Sprintf("%d/%d", c.Positives[i], c.Negatives[i]))
		}
		rows = append(rows, row)
	}
	fmt.Fprint(w, Table(header, rows))
	if r.Ignored > 0 {
		Warn(w, "Ignored %d mappings with unknown categories", r.Ignored)
	}
	summary(w, "Partitioned", len(r.Categories), r.Failed())
}

func datasetsReport(w io.Writer, r *pipeline.DatasetsReport) {
	header := []string{"CATEGORY", "PARTITION", "ROWS", "POS", "NEG", "STATUS"}
	var rows [][]string
	for _, u := range r.Units {
		status := okStyle.Render("ok")
		switch {
		case u.Err != nil:
			status = failStyle.Render(u.Err.Error())
		case u.Degenerate:
			status = warnStyle.Render("single label")
		}
		rows = append(rows, []string{
			u.Category, strconv.Itoa(u.Partition), strconv.Itoa(u.Rows),
			strconv.Itoa(u.Positives), strconv.Itoa(u.Negatives), status,
		})
	}
	fmt.Fprint(w, Table(header, rows))
	if n := r.Degenerate(); n > 0 {
		Warn(w, "%d datasets have a single label", n)
	}
	summary(w, fmt.Sprintf("Assembled (extractors %d, %s)", r.ExtractorsID, r.Compression), len(r.Units), r.Failed())
}

func summary(w io.Writer, what string, total, failed int) {
	if failed > 0 {
		Fail(w, "%s %d/%d, %d failed", what, total-failed, total, failed)
		return
	}
	OK(w, "%s %d/%d", what, total, total)
}
