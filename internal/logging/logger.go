// Package logging provides the structured logger shared by all tasks.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with commentlab-specific helpers so every task
// logs the same field names.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w. format is "text" or "json".
func New(w io.Writer, format string, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithCorpus tags the logger with the corpus name.
func (l *Logger) WithCorpus(corpus string) *Logger {
	return &Logger{Logger: l.Logger.With("corpus", corpus)}
}

// WithCategory tags the logger with a category.
func (l *Logger) WithCategory(category string) *Logger {
	return &Logger{Logger: l.Logger.With("category", category)}
}

// WithTask tags the logger with the task name.
func (l *Logger) WithTask(task string) *Logger {
	return &Logger{Logger: l.Logger.With("task", task)}
}

// LogPartition logs the outcome of partitioning one category.
func (l *Logger) LogPartition(ctx context.Context, category string, assigned int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partition failed",
			"category", category,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "partition completed",
		"category", category,
		"assigned", assigned,
	)
}

// LogDataset logs the outcome of assembling one (category, partition).
func (l *Logger) LogDataset(ctx context.Context, category string, partition, rows int, degenerate bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "dataset assembly failed",
			"category", category,
			"partition", partition,
			"error", err,
		)
	case degenerate:
		l.WarnContext(ctx, "dataset is degenerate",
			"category", category,
			"partition", partition,
			"rows", rows,
		)
	default:
		l.DebugContext(ctx, "dataset assembled",
			"category", category,
			"partition", partition,
			"rows", rows,
		)
	}
}

// LogBatch logs a bulk job summary.
func (l *Logger) LogBatch(ctx context.Context, task string, total, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"task", task,
			"total", total,
			"failed", failed,
			"success", total-failed,
		)
		return
	}
	l.InfoContext(ctx, "batch completed",
		"task", task,
		"count", total,
	)
}
