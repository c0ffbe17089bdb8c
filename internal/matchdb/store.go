// Package matchdb persists match outcomes in DuckDB. Each target shard
// writes its outcomes to its own database file; the merge step reads them
// back for global conflict re-detection. DuckDB keeps the outcome sets out
// of memory and queryable after a run.
package matchdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding match outcomes.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create match database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS match_results (
		accession VARCHAR,
		row_nr BIGINT,
		chr_name VARCHAR,
		chr_position BIGINT,
		effect_allele VARCHAR,
		other_allele VARCHAR,
		effect_weight VARCHAR,
		effect_type VARCHAR,
		is_duplicated BOOLEAN,
		status VARCHAR,
		reason VARCHAR,
		match_type VARCHAR,
		target_id VARCHAR,
		target_ref VARCHAR,
		target_alt VARCHAR,
		is_multiallelic BOOLEAN,
		matched_effect_allele VARCHAR,
		ambiguous BOOLEAN,
		PRIMARY KEY (accession, row_nr)
	)`)
	return err
}
