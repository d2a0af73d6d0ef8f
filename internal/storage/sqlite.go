// Package storage persists run artifacts into a SQLite database for BI
// tools that prefer SQL over the CSV exports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"reviewlens/internal/complaints"
	"reviewlens/internal/ml"
	"reviewlens/internal/model"
)

// SQLiteStore writes completed runs into a SQLite artifacts database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Run captures everything persisted for one pipeline invocation.
type Run struct {
	StartedAt     time.Time
	ID            string
	InputPath     string
	SelectedModel string
	Reviews       []model.Review
	Suggestions   []model.Suggestion
	TopTerms      map[string][]ml.WeightedTerm
	Counts        complaints.Counts
	MacroF1       float64
	Accuracy      float64
}

// NewSQLiteStore opens (and migrates) the artifacts database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			input_path TEXT NOT NULL,
			review_count INTEGER NOT NULL,
			selected_model TEXT NOT NULL,
			cv_macro_f1 REAL NOT NULL,
			holdout_accuracy REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT,
			rating INTEGER NOT NULL,
			sentiment TEXT NOT NULL,
			location TEXT,
			month TEXT,
			review TEXT NOT NULL,
			cleaned_review TEXT,
			complaint_categories TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS complaint_counts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			category TEXT NOT NULL,
			sentiment TEXT NOT NULL,
			count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS suggestions (
			run_id TEXT NOT NULL REFERENCES runs(id),
			suggestion TEXT NOT NULL,
			source TEXT NOT NULL,
			model TEXT,
			generated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS top_terms (
			run_id TEXT NOT NULL REFERENCES runs(id),
			sentiment TEXT NOT NULL,
			rank INTEGER NOT NULL,
			term TEXT NOT NULL,
			weight REAL NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// SaveRun persists one completed run in a single transaction, so a
// terminated process never leaves a partial run behind.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_path, review_count, selected_model, cv_macro_f1, holdout_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.InputPath, len(run.Reviews), run.SelectedModel, run.MacroF1, run.Accuracy,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, rv := range run.Reviews {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reviews (run_id, source, rating, sentiment, location, month, review, cleaned_review, complaint_categories)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, rv.Source, rv.Rating, string(rv.Sentiment), rv.Location, rv.Month, rv.Text, rv.CleanedText,
			complaints.Join(rv.Categories),
		); err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
	}

	for cat, bySent := range run.Counts.BySentiment {
		for sent, n := range bySent {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO complaint_counts (run_id, category, sentiment, count) VALUES (?, ?, ?, ?)`,
				run.ID, string(cat), string(sent), n,
			); err != nil {
				return fmt.Errorf("failed to insert complaint count: %w", err)
			}
		}
	}

	for _, sg := range run.Suggestions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO suggestions (run_id, suggestion, source, model, generated_at) VALUES (?, ?, ?, ?, ?)`,
			run.ID, sg.Text, string(sg.Source), sg.Model, sg.GeneratedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert suggestion: %w", err)
		}
	}

	for sent, terms := range run.TopTerms {
		for i, term := range terms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO top_terms (run_id, sentiment, rank, term, weight) VALUES (?, ?, ?, ?, ?)`,
				run.ID, sent, i+1, term.Term, term.Weight,
			); err != nil {
				return fmt.Errorf("failed to insert top term: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}
