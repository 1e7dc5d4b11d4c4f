// Package results persists batch outputs in DuckDB: per-(study, chromosome)
// gene metadata, deletion frequencies, co-deletion counts, conditional
// probabilities, and the batch run summary. Undefined conditional
// probabilities are stored as NULL, never as 0.
package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for batch results.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database. An s3:// path attaches the database
// read-only through the httpfs extension, which is how a shared
// object-storage copy of the results is queried.
func Open(path string) (*Store, error) {
	if strings.HasPrefix(path, "s3://") {
		return openRemote(path)
	}

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
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

func openRemote(path string) (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec("INSTALL httpfs; LOAD httpfs"); err != nil {
		db.Close()
		return nil, fmt.Errorf("load httpfs: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("ATTACH '%s' AS results (READ_ONLY); USE results", path)); err != nil {
		db.Close()
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	return &Store{db: db, path: path, readOnly: true}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ReadOnly reports whether the store was attached read-only.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS genes (
			gene_symbol VARCHAR,
			entrez_id BIGINT,
			chromosome VARCHAR,
			cytoband VARCHAR,
			start_position BIGINT,
			end_position BIGINT,
			PRIMARY KEY (gene_symbol, entrez_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gene_frequencies (
			study_id VARCHAR,
			chromosome VARCHAR,
			gene_symbol VARCHAR,
			entrez_id BIGINT,
			frequency DOUBLE,
			deleted INTEGER,
			observed INTEGER,
			PRIMARY KEY (study_id, chromosome, gene_symbol, entrez_id)
		)`,
		`CREATE TABLE IF NOT EXISTS codeletion_counts (
			study_id VARCHAR,
			chromosome VARCHAR,
			gene_i VARCHAR,
			entrez_i BIGINT,
			gene_j VARCHAR,
			entrez_j BIGINT,
			pair_count INTEGER,
			sample_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS conditional_probabilities (
			study_id VARCHAR,
			chromosome VARCHAR,
			gene_i VARCHAR,
			entrez_i BIGINT,
			gene_j VARCHAR,
			entrez_j BIGINT,
			probability DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS batch_units (
			run_id VARCHAR,
			study_id VARCHAR,
			chromosome VARCHAR,
			status VARCHAR,
			detail VARCHAR,
			samples INTEGER,
			genes INTEGER,
			finished_at TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
