package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists complaints and users for the backend in a single SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the database at path. Parent directories are
// created as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: the pragmas below are per-connection, and a single
	// writer avoids "database is locked" under concurrent handlers.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			email TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS complaints (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			user_name TEXT NOT NULL,
			complaint TEXT NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER,
			resolved_by TEXT,
			status_updated_at_unixms INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_user ON complaints(user_email);`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_created ON complaints(created_at_unixms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func toUnixMS(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromUnixMS(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
