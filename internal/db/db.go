// Package db owns the SQLite connection and schema bootstrap.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if necessary) the database at path and applies the
// schema. The parent directory is created when missing.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := prepare(database); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// OpenInMemory opens a fresh in-memory database with the schema applied.
// Tests use this so every test case starts from a clean store.
func OpenInMemory() (*sql.DB, error) {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	if err := prepare(database); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

func prepare(database *sql.DB) error {
	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
