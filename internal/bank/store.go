package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playperu/geoquest/internal/geoquest"
)

var ErrNotFound = errors.New("not found")

// Store keeps questions in SQLite, one JSON document per row. Schema comes
// from package migrations.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// Questions returns every stored question ordered by id.
func (s *Store) Questions(ctx context.Context) ([]geoquest.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var out []geoquest.Question
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var q geoquest.Question
		if err := json.Unmarshal([]byte(doc), &q); err != nil {
			return nil, fmt.Errorf("decoding stored question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Import upserts the document's questions and records its version in one
// transaction.
func (s *Store) Import(ctx context.Context, doc geoquest.QuestionBank) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for _, q := range doc.Questions {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encoding question %q: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, type, difficulty, category, doc)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				type = excluded.type,
				difficulty = excluded.difficulty,
				category = excluded.category,
				doc = excluded.doc
		`, q.ID, q.Type, q.Difficulty, q.Category, string(data)); err != nil {
			return fmt.Errorf("inserting question %q: %w", q.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bank_meta (id, version, last_updated)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = excluded.version,
			last_updated = excluded.last_updated,
			imported_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, doc.Version, doc.LastUpdated); err != nil {
		return fmt.Errorf("recording bank version: %w", err)
	}

	return tx.Commit()
}

// Version returns the version of the last imported document.
func (s *Store) Version(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT version FROM bank_meta WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Seed imports doc when the store is empty. Idempotent: does nothing once
// questions exist.
func Seed(ctx context.Context, logger *slog.Logger, s *Store, doc geoquest.QuestionBank) error {
	n, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting questions: %w", err)
	}
	if n > 0 || len(doc.Questions) == 0 {
		return nil
	}

	if err := s.Import(ctx, doc); err != nil {
		return err
	}
	logger.Info("question store seeded", "version", doc.Version, "questions", len(doc.Questions))
	return nil
}
