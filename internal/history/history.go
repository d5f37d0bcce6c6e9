// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history archives completed searches in a SQLite database. It
// stores finished summaries only; live task state stays in memory and is
// never persisted.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// Entry is one archived search.
type Entry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Intent      string    `json:"intent_json"`
	SortBy      string    `json:"sort_by"`
	ResultCount int       `json:"result_count"`
	FinalUnique int       `json:"final_unique"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store manages the archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		intent_json TEXT,
		sort_by TEXT,
		result_count INTEGER,
		final_unique INTEGER,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record archives one completed search.
func (s *Store) Record(resp types.SearchResponse) error {
	intentJSON, err := json.Marshal(resp.NormalizedIntent)
	if err != nil {
		return fmt.Errorf("encoding intent: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO searches (id, query, intent_json, sort_by, result_count, final_unique, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		resp.Query,
		string(intentJSON),
		resp.NormalizedIntent.SortBy,
		len(resp.Results),
		resp.Counts.FinalUniqueCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting search record: %w", err)
	}
	return nil
}

// List returns the most recent archived searches, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, query, intent_json, sort_by, result_count, final_unique, created_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Query, &e.Intent, &e.SortBy, &e.ResultCount, &e.FinalUnique, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search rows: %w", err)
	}
	return entries, nil
}
