package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ppiankov/commentlab/internal/model"
)

// ExtractorsRecord is the stored form of an extractors partition.
type ExtractorsRecord struct {
	ID         int
	Partition  int
	Vocabulary []byte // CSV "word,count" lines
	Patterns   []byte // YAML pattern document
}

// DatasetRecord is a stored dataset blob with its summary.
type DatasetRecord struct {
	Partition           int
	ExtractorsPartition int
	Category            string
	Compression         string
	Rows                int
	Positives           int
	Negatives           int
	Degenerate          bool
	Blob                []byte
}

// SaveExtractors stores (or replaces) an extractors partition.
func (s *SQLiteStore) SaveExtractors(ctx context.Context, corpus string, r ExtractorsRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractors (corpus, id, partition, vocabulary, patterns) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (corpus, id) DO UPDATE SET
			partition = excluded.partition,
			vocabulary = excluded.vocabulary,
			patterns = excluded.patterns,
			created_at = CURRENT_TIMESTAMP`,
		corpus, r.ID, r.Partition, r.Vocabulary, r.Patterns)
	if err != nil {
		return fmt.Errorf("saving extractors %d: %w", r.ID, err)
	}
	return nil
}

// LoadExtractors loads an extractors partition. A missing partition is a
// configuration error.
func (s *SQLiteStore) LoadExtractors(ctx context.Context, corpus string, id int) (*ExtractorsRecord, error) {
	r := &ExtractorsRecord{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT partition, vocabulary, patterns FROM extractors WHERE corpus = ? AND id = ?`,
		corpus, id).Scan(&r.Partition, &r.Vocabulary, &r.Patterns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: extractors partition %d of corpus %s", model.ErrMissingArtifact, id, corpus)
	}
	if err != nil {
		return nil, fmt.Errorf("loading extractors %d: %w", id, err)
	}
	return r, nil
}

// SaveDataset stores (or replaces) the dataset of (partition, extractors
// partition, category).
func (s *SQLiteStore) SaveDataset(ctx context.Context, corpus string, r DatasetRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets
		 (corpus, partition, extractors_partition, category, compression, row_count, positives, negatives, degenerate, blob)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (corpus, partition, extractors_partition, category) DO UPDATE SET
			compression = excluded.compression,
			row_count = excluded.row_count,
			positives = excluded.positives,
			negatives = excluded.negatives,
			degenerate = excluded.degenerate,
			blob = excluded.blob,
			created_at = CURRENT_TIMESTAMP`,
		corpus, r.Partition, r.ExtractorsPartition, r.Category, r.Compression,
		r.Rows, r.Positives, r.Negatives, r.Degenerate, r.Blob)
	if err != nil {
		return fmt.Errorf("saving dataset %d/%d/%s: %w", r.Partition, r.ExtractorsPartition, r.Category, err)
	}
	return nil
}

// Datasets lists the datasets of an extractors partition ordered by
// partition and category. withBlob controls whether blobs are loaded.
func (s *SQLiteStore) Datasets(ctx context.Context, corpus string, extractorsPartition int, withBlob bool) ([]DatasetRecord, error) {
	blob := "x''"
	if withBlob {
		blob = "blob"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT partition, extractors_partition, category, compression, row_count, positives, negatives, degenerate, `+blob+`
		 FROM datasets WHERE corpus = ? AND extractors_partition = ?
		 ORDER BY partition ASC, category ASC`, corpus, extractorsPartition)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var out []DatasetRecord
	for rows.Next() {
		var r DatasetRecord
		if err := rows.Scan(&r.Partition, &r.ExtractorsPartition, &r.Category, &r.Compression,
			&r.Rows, &r.Positives, &r.Negatives, &r.Degenerate, &r.Blob); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
