// Package bank loads question banks. The quiz core only needs a list of
// questions; every failure here degrades to a smaller or empty list.
package bank

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/playperu/geoquest/internal/geoquest"
)

//go:embed questions.json
var defaultDoc []byte

// Decode reads a {version, lastUpdated, questions} document.
func Decode(r io.Reader) (geoquest.QuestionBank, error) {
	var doc geoquest.QuestionBank
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return geoquest.QuestionBank{}, fmt.Errorf("decoding question bank: %w", err)
	}
	return doc, nil
}

func LoadFile(path string) (geoquest.QuestionBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return geoquest.QuestionBank{}, fmt.Errorf("opening question bank: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Default returns the bank compiled into the binary.
func Default() (geoquest.QuestionBank, error) {
	return Decode(bytes.NewReader(defaultDoc))
}

// Load returns the questions to play with. The document comes from path, or
// the built-in bank when path is empty. When db is non-nil the document seeds
// the SQLite store and questions are read back from it. Errors are logged and
// never returned.
func Load(ctx context.Context, logger *slog.Logger, path string, db *sql.DB) []geoquest.Question {
	var (
		doc geoquest.QuestionBank
		err error
	)
	if path == "" {
		doc, err = Default()
	} else {
		doc, err = LoadFile(path)
	}
	if err != nil {
		logger.Error("loading question bank", "path", path, "error", err)
	}

	questions := unique(logger, doc.Questions)
	version := doc.Version

	if db != nil {
		store := NewStore(db)
		if err := Seed(ctx, logger, store, geoquest.QuestionBank{
			Version:     doc.Version,
			LastUpdated: doc.LastUpdated,
			Questions:   questions,
		}); err != nil {
			logger.Error("seeding question store", "error", err)
		}

		stored, err := store.Questions(ctx)
		if err != nil {
			logger.Error("reading question store", "error", err)
		} else {
			questions = stored
		}

		// The store keeps the version it was seeded with, which may differ
		// from the document just read.
		if v, err := store.Version(ctx); err == nil {
			version = v
		}
	}

	if len(questions) == 0 {
		logger.Warn("question bank is empty")
	} else {
		logger.Info("question bank loaded", "version", version, "questions", len(questions))
	}
	return questions
}

// unique drops questions whose id was already seen, keeping the first.
func unique(logger *slog.Logger, qs []geoquest.Question) []geoquest.Question {
	seen := make(map[string]struct{}, len(qs))
	out := make([]geoquest.Question, 0, len(qs))
	for _, q := range qs {
		if _, ok := seen[q.ID]; ok {
			logger.Warn("skipping duplicate question", "id", q.ID)
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
