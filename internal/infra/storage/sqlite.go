// Package storage persists accounts and finished matches in sqlite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite opens the database file, creating it and the schema on first
// run.
func InitSQLite(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			permission INTEGER NOT NULL DEFAULT 0,
			banned BOOLEAN NOT NULL DEFAULT 0,
			since DATETIME NOT NULL,
			setup_1 TEXT,
			setup_2 TEXT,
			setup_3 TEXT,
			setup_4 TEXT,
			setup_5 TEXT,
			setup_6 TEXT,
			setup_7 TEXT,
			setup_8 TEXT,
			setup_9 TEXT,
			setup_10 TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			private BOOLEAN NOT NULL DEFAULT 0,
			inventor TEXT,
			formation TEXT,
			constraints TEXT,
			exclusion TEXT,
			total INTEGER NOT NULL,
			player_1 TEXT,
			player_2 TEXT,
			player_3 TEXT,
			player_4 TEXT,
			player_5 TEXT,
			player_6 TEXT,
			player_7 TEXT,
			player_8 TEXT,
			player_9 TEXT,
			player_10 TEXT,
			player_11 TEXT,
			player_12 TEXT,
			player_13 TEXT,
			player_14 TEXT,
			player_15 TEXT,
			stored_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS match_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			row TEXT NOT NULL,
			FOREIGN KEY (match_id) REFERENCES matches(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_match_events_match_id ON match_events(match_id);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
