package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/commentlab/internal/model"
)

// PartitionRun records one execution of the partition task.
type PartitionRun struct {
	ID          string
	Corpus      string
	Percentages []int
	Selection   string
	CreatedAt   time.Time
}

// PartitionSentence is a row of the partition sentences view.
type PartitionSentence struct {
	Class     string
	Sentence  string
	Partition int
	Category  string
}

// BeginPartitionRun clears the corpus' previous assignments and registers a
// new run. The returned id tags every assignment of the run.
func (s *SQLiteStore) BeginPartitionRun(ctx context.Context, corpus string, percentages []int, selection string) (*PartitionRun, error) {
	run := &PartitionRun{
		ID:          uuid.NewString(),
		Corpus:      corpus,
		Percentages: append([]int(nil), percentages...),
		Selection:   selection,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.withTx(ctx, "partition run", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sentence_partitions WHERE corpus = ?`, corpus); err != nil {
			return fmt.Errorf("clearing sentence_partitions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO partition_runs (id, corpus, percentages, selection, created_at) VALUES (?, ?, ?, ?, ?)`,
			run.ID, corpus, joinInts(percentages), selection, run.CreatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting partition run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// PartitionRuns lists the corpus' runs, newest first.
func (s *SQLiteStore) PartitionRuns(ctx context.Context, corpus string) ([]PartitionRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, corpus, percentages, selection, created_at FROM partition_runs
		 WHERE corpus = ? ORDER BY created_at DESC, rowid DESC`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying partition runs: %w", err)
	}
	defer rows.Close()

	var out []PartitionRun
	for rows.Next() {
		var r PartitionRun
		var percentages, created string
		if err := rows.Scan(&r.ID, &r.Corpus, &percentages, &r.Selection, &created); err != nil {
			return nil, fmt.Errorf("scanning partition run: %w", err)
		}
		r.Percentages = splitInts(percentages)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AppendAssignments writes the assignments of one category in a single
// transaction. An id already assigned for the same (category, instance
// type) violates the unique constraint and fails the whole batch.
func (s *SQLiteStore) AppendAssignments(ctx context.Context, corpus, runID string, assignments []model.Assignment) error {
	return s.withTx(ctx, "assignments", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO sentence_partitions (corpus, run_id, sentence_id, category, instance_type, partition)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing assignment insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range assignments {
			if _, err := stmt.ExecContext(ctx, corpus, runID, a.SentenceID, a.Category, int(a.InstanceType), a.Partition); err != nil {
				return fmt.Errorf("inserting assignment %d/%s: %w", a.SentenceID, a.Category, err)
			}
		}
		return nil
	})
}

// Assignments returns the assignments of a category, ordered by partition,
// instance type (positive first) and sentence id.
func (s *SQLiteStore) Assignments(ctx context.Context, corpus, category string) ([]model.Assignment, error) {
	return s.queryAssignments(ctx,
		`SELECT sentence_id, category, instance_type, partition FROM sentence_partitions
		 WHERE corpus = ? AND category = ?
		 ORDER BY partition ASC, instance_type DESC, sentence_id ASC`, corpus, category)
}

// AssignmentsByPartition returns the assignments of one (category, partition).
func (s *SQLiteStore) AssignmentsByPartition(ctx context.Context, corpus, category string, partition int) ([]model.Assignment, error) {
	return s.queryAssignments(ctx,
		`SELECT sentence_id, category, instance_type, partition FROM sentence_partitions
		 WHERE corpus = ? AND category = ? AND partition = ?
		 ORDER BY instance_type DESC, sentence_id ASC`, corpus, category, partition)
}

func (s *SQLiteStore) queryAssignments(ctx context.Context, query string, args ...any) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var it int
		if err := rows.Scan(&a.SentenceID, &a.Category, &it, &a.Partition); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.InstanceType = model.InstanceType(it)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PartitionCounts returns, per partition, how many assignments exist.
func (s *SQLiteStore) PartitionCounts(ctx context.Context, corpus string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT partition, COUNT(*) FROM sentence_partitions WHERE corpus = ? GROUP BY partition`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying partition counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var p, n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("scanning partition count: %w", err)
		}
		out[p] = n
	}
	return out, rows.Err()
}

// PartitionTexts returns the distinct texts of the comment sentences
// assigned to partition in any category, ordered by sentence id.
func (s *SQLiteStore) PartitionTexts(ctx context.Context, corpus string, partition int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.text FROM sentences s
		 WHERE s.corpus = ? AND s.id IN (
			SELECT sentence_id FROM sentence_partitions WHERE corpus = ? AND partition = ?
		 )
		 ORDER BY s.id ASC`, corpus, corpus, partition)
	if err != nil {
		return nil, fmt.Errorf("querying partition texts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scanning partition text: %w", err)
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

// PartitionSentences returns the distinct (class, sentence, partition,
// category) rows of the positive assignments.
func (s *SQLiteStore) PartitionSentences(ctx context.Context, corpus string) ([]PartitionSentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT s.class, s.text, p.partition, p.category
		 FROM sentence_partitions p
		 JOIN sentences s ON s.corpus = p.corpus AND s.id = p.sentence_id
		 WHERE p.corpus = ? AND p.instance_type = ?
		 ORDER BY p.partition ASC, p.category ASC, s.class ASC, s.text ASC`, corpus, int(model.Positive))
	if err != nil {
		return nil, fmt.Errorf("querying partition sentences: %w", err)
	}
	defer rows.Close()

	var out []PartitionSentence
	for rows.Next() {
		var r PartitionSentence
		if err := rows.Scan(&r.Class, &r.Sentence, &r.Partition, &r.Category); err != nil {
			return nil, fmt.Errorf("scanning partition sentence: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}
