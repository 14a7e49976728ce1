package tokenstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"handoff/internal/ports"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLite persists tokens so a restarted host still presents the last one.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.TokenStore = (*SQLite)(nil)

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("token store path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Close releases the connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the token stored under key.
func (s *SQLite) Get(key string) (string, bool, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM sign_tokens WHERE app_key = ?`, key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sign token: %w", err)
	}
	return token, true, nil
}

// Set replaces the token under key.
func (s *SQLite) Set(key, token string) error {
	_, err := s.db.Exec(`
INSERT INTO sign_tokens (app_key, token, updated_at) VALUES (?, ?, ?)
ON CONFLICT(app_key) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
`, key, token, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("set sign token: %w", err)
	}
	return nil
}

// applyMigrations runs each embedded file once, recording it in schema_migrations.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var count int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}
		content, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// upSection returns the part after "-- +migrate Up" and before any "-- +migrate Down".
func upSection(content string) string {
	if _, after, ok := strings.Cut(content, "-- +migrate Up"); ok {
		content = after
	}
	if before, _, ok := strings.Cut(content, "-- +migrate Down"); ok {
		content = before
	}
	return content
}
