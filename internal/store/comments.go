package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/ppiankov/commentlab/internal/model"
)

// Comment is one imported comment with its per-category reference texts.
type Comment struct {
	ID         int64
	Class      string
	Stratum    int
	Comment    string
	Categories map[string]string // category -> text classified under it
}

// SentenceKind distinguishes comment sentences from category sentences.
type SentenceKind string

const (
	KindComment  SentenceKind = "comment"
	KindCategory SentenceKind = "category"
)

// SentenceRecord is a stored sentence. Category is empty for comment sentences.
type SentenceRecord struct {
	ID        model.SentenceID
	Kind      SentenceKind
	CommentID int64
	Class     string
	Stratum   int
	Category  string
	Text      string
}

// MappingRecord is one raw mapping of a comment sentence to a category sentence.
type MappingRecord struct {
	CommentSentenceID  model.SentenceID
	CategorySentenceID model.SentenceID
	Category           string
	Strategy           string
	Similarity         float64
}

// ImportComments replaces the corpus' categories and comments.
func (s *SQLiteStore) ImportComments(ctx context.Context, corpus string, categories []string, comments []Comment) error {
	return s.withTx(ctx, "import", func(tx *sql.Tx) error {
		for _, table := range []string{"categories", "comments", "comment_categories"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE corpus = ?`, corpus); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx, `INSERT INTO categories (corpus, name) VALUES (?, ?)`, corpus, c); err != nil {
				return fmt.Errorf("inserting category %q: %w", c, err)
			}
		}
		for _, c := range comments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO comments (corpus, id, class, stratum, comment) VALUES (?, ?, ?, ?, ?)`,
				corpus, c.ID, c.Class, c.Stratum, c.Comment,
			); err != nil {
				return fmt.Errorf("inserting comment %d: %w", c.ID, err)
			}
			for _, category := range sortedKeys(c.Categories) {
				text := c.Categories[category]
				if text == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO comment_categories (corpus, comment_id, category, text) VALUES (?, ?, ?, ?)`,
					corpus, c.ID, category, text,
				); err != nil {
					return fmt.Errorf("inserting category text %d/%s: %w", c.ID, category, err)
				}
			}
		}
		return nil
	})
}

// Categories returns the corpus' categories in ascending order.
func (s *SQLiteStore) Categories(ctx context.Context, corpus string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories WHERE corpus = ? ORDER BY name ASC`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Comments returns the imported comments ordered by id.
func (s *SQLiteStore) Comments(ctx context.Context, corpus string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class, stratum, comment FROM comments WHERE corpus = ? ORDER BY id ASC`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	var comments []Comment
	index := make(map[int64]int)
	for rows.Next() {
		c := Comment{Categories: make(map[string]string)}
		if err := rows.Scan(&c.ID, &c.Class, &c.Stratum, &c.Comment); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	texts, err := s.db.QueryContext(ctx,
		`SELECT comment_id, category, text FROM comment_categories WHERE corpus = ?`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying category texts: %w", err)
	}
	defer texts.Close()
	for texts.Next() {
		var id int64
		var category, text string
		if err := texts.Scan(&id, &category, &text); err != nil {
			return nil, fmt.Errorf("scanning category text: %w", err)
		}
		if i, ok := index[id]; ok {
			comments[i].Categories[category] = text
		}
	}
	return comments, texts.Err()
}

// ReplaceSentences replaces every sentence of the corpus. Mappings and
// partitions built on the old ids are cleared with them.
func (s *SQLiteStore) ReplaceSentences(ctx context.Context, corpus string, sentences []SentenceRecord) error {
	return s.withTx(ctx, "split", func(tx *sql.Tx) error {
		for _, table := range []string{"sentences", "sentence_mappings", "sentence_mappings_clean", "sentence_partitions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE corpus = ?`, corpus); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO sentences (corpus, id, kind, comment_id, class, stratum, category, text)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing sentence insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range sentences {
			if _, err := stmt.ExecContext(ctx, corpus, r.ID, string(r.Kind), r.CommentID, r.Class, r.Stratum, r.Category, r.Text); err != nil {
				return fmt.Errorf("inserting sentence %d: %w", r.ID, err)
			}
		}
		return nil
	})
}

// Sentences returns the sentences of one kind ordered by id.
func (s *SQLiteStore) Sentences(ctx context.Context, corpus string, kind SentenceKind) ([]SentenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, comment_id, class, stratum, category, text
		 FROM sentences WHERE corpus = ? AND kind = ? ORDER BY id ASC`, corpus, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying sentences: %w", err)
	}
	defer rows.Close()

	var out []SentenceRecord
	for rows.Next() {
		var r SentenceRecord
		var k string
		if err := rows.Scan(&r.ID, &k, &r.CommentID, &r.Class, &r.Stratum, &r.Category, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning sentence: %w", err)
		}
		r.Kind = SentenceKind(k)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SentenceTexts returns the text of every comment sentence keyed by id.
func (s *SQLiteStore) SentenceTexts(ctx context.Context, corpus string) (map[model.SentenceID]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text FROM sentences WHERE corpus = ? AND kind = 'comment'`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying sentence texts: %w", err)
	}
	defer rows.Close()

	out := make(map[model.SentenceID]string)
	for rows.Next() {
		var id model.SentenceID
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scanning sentence text: %w", err)
		}
		out[id] = text
	}
	return out, rows.Err()
}

// ReplaceMappings stores the raw mappings and derives the clean
// (sentence, category, stratum) relation from them.
func (s *SQLiteStore) ReplaceMappings(ctx context.Context, corpus string, mappings []MappingRecord) error {
	return s.withTx(ctx, "map", func(tx *sql.Tx) error {
		for _, table := range []string{"sentence_mappings", "sentence_mappings_clean", "sentence_partitions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE corpus = ?`, corpus); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		for _, m := range mappings {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO sentence_mappings
				 (corpus, comment_sentence_id, category_sentence_id, category, strategy, similarity)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				corpus, m.CommentSentenceID, m.CategorySentenceID, m.Category, m.Strategy, m.Similarity,
			); err != nil {
				return fmt.Errorf("inserting mapping %d->%d: %w", m.CommentSentenceID, m.CategorySentenceID, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sentence_mappings_clean (corpus, sentence_id, category, stratum)
			 SELECT DISTINCT m.corpus, m.comment_sentence_id, m.category, s.stratum
			 FROM sentence_mappings m
			 JOIN sentences s ON s.corpus = m.corpus AND s.id = m.comment_sentence_id
			 WHERE m.corpus = ?`, corpus); err != nil {
			return fmt.Errorf("building clean mappings: %w", err)
		}
		return nil
	})
}

// Mappings returns the clean sentence-category mapping ordered by sentence id.
func (s *SQLiteStore) Mappings(ctx context.Context, corpus string) ([]model.Mapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sentence_id, category, stratum FROM sentence_mappings_clean
		 WHERE corpus = ? ORDER BY sentence_id ASC, category ASC`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var out []model.Mapping
	for rows.Next() {
		var m model.Mapping
		if err := rows.Scan(&m.SentenceID, &m.Category, &m.Stratum); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MappingStats counts raw mappings per strategy.
func (s *SQLiteStore) MappingStats(ctx context.Context, corpus string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, COUNT(*) FROM sentence_mappings WHERE corpus = ? GROUP BY strategy`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying mapping stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var strategy string
		var n int
		if err := rows.Scan(&strategy, &n); err != nil {
			return nil, fmt.Errorf("scanning mapping stats: %w", err)
		}
		out[strategy] = n
	}
	return out, rows.Err()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
