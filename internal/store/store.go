// Package store persists every task's output in a single SQLite database.
// All tables carry a corpus column so several corpora share one file.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	corpus TEXT NOT NULL,
	name   TEXT NOT NULL,
	PRIMARY KEY (corpus, name)
);

CREATE TABLE IF NOT EXISTS comments (
	corpus  TEXT    NOT NULL,
	id      INTEGER NOT NULL,
	class   TEXT    NOT NULL,
	stratum INTEGER NOT NULL,
	comment TEXT    NOT NULL,
	PRIMARY KEY (corpus, id)
);

CREATE TABLE IF NOT EXISTS comment_categories (
	corpus     TEXT    NOT NULL,
	comment_id INTEGER NOT NULL,
	category   TEXT    NOT NULL,
	text       TEXT    NOT NULL,
	PRIMARY KEY (corpus, comment_id, category)
);

CREATE TABLE IF NOT EXISTS sentences (
	corpus     TEXT    NOT NULL,
	id         INTEGER NOT NULL,
	kind       TEXT    NOT NULL CHECK (kind IN ('comment', 'category')),
	comment_id INTEGER NOT NULL,
	class      TEXT    NOT NULL,
	stratum    INTEGER NOT NULL,
	category   TEXT    NOT NULL DEFAULT '',
	text       TEXT    NOT NULL,
	PRIMARY KEY (corpus, id)
);
CREATE INDEX IF NOT EXISTS idx_sentences_kind ON sentences (corpus, kind, class);

CREATE TABLE IF NOT EXISTS sentence_mappings (
	corpus               TEXT    NOT NULL,
	comment_sentence_id  INTEGER NOT NULL,
	category_sentence_id INTEGER NOT NULL,
	category             TEXT    NOT NULL,
	strategy             TEXT    NOT NULL,
	similarity           REAL    NOT NULL,
	PRIMARY KEY (corpus, comment_sentence_id, category_sentence_id, strategy)
);

CREATE TABLE IF NOT EXISTS sentence_mappings_clean (
	corpus      TEXT    NOT NULL,
	sentence_id INTEGER NOT NULL,
	category    TEXT    NOT NULL,
	stratum     INTEGER NOT NULL,
	PRIMARY KEY (corpus, sentence_id, category)
);

CREATE TABLE IF NOT EXISTS partition_runs (
	id          TEXT NOT NULL PRIMARY KEY,
	corpus      TEXT NOT NULL,
	percentages TEXT NOT NULL,
	selection   TEXT NOT NULL,
	created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sentence_partitions (
	corpus        TEXT    NOT NULL,
	run_id        TEXT    NOT NULL REFERENCES partition_runs (id),
	sentence_id   INTEGER NOT NULL,
	category      TEXT    NOT NULL,
	instance_type INTEGER NOT NULL,
	partition     INTEGER NOT NULL,
	UNIQUE (corpus, category, instance_type, sentence_id)
);
CREATE INDEX IF NOT EXISTS idx_sentence_partitions_lookup ON sentence_partitions (corpus, category, partition);

CREATE TABLE IF NOT EXISTS extractors (
	corpus     TEXT    NOT NULL,
	id         INTEGER NOT NULL,
	partition  INTEGER NOT NULL,
	vocabulary BLOB    NOT NULL,
	patterns   BLOB    NOT NULL,
	created_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (corpus, id)
);

CREATE TABLE IF NOT EXISTS datasets (
	corpus               TEXT    NOT NULL,
	partition            INTEGER NOT NULL,
	extractors_partition INTEGER NOT NULL,
	category             TEXT    NOT NULL,
	compression          TEXT    NOT NULL,
	row_count            INTEGER NOT NULL,
	positives            INTEGER NOT NULL,
	negatives            INTEGER NOT NULL,
	degenerate           INTEGER NOT NULL,
	blob                 BLOB    NOT NULL,
	created_at           TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (corpus, partition, extractors_partition, category)
);
`

// SQLiteStore is the SQLite-backed store.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection: SQLite allows a single writer and category workers
	// would otherwise contend on the file lock.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (s *SQLiteStore) withTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", what, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", what, err)
	}
	return nil
}
