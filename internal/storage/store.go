package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/st3v3nmw/focusguard/internal/sites"
)

var ErrNotFound = errors.New("key not found")

const (
	KeyTopics            = "studyTopics"
	KeySiteSettings      = "siteSettings"
	KeyRecordingSettings = "recordingSettings"
	KeyBrowsing          = "stats_browsing"
	KeyPatience          = "stats_patience"
	KeyExtensionEnabled  = "extensionEnabled"
	KeyLanguage          = "language"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Store keeps JSON documents by key in SQLite.
type Store struct {
	db *sql.DB

	// serializes read-modify-write cycles on settings keys
	mu sync.Mutex

	defaults Defaults
}

// Defaults are returned for keys that have never been written.
type Defaults struct {
	Sites    sites.Settings
	Language string
}

// Open opens (or creates) the database at path. Use ":memory:" in tests.
func Open(path string, defaults Defaults) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	s, err := New(db, defaults)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an open database and runs migrations.
func New(db *sql.DB, defaults Defaults) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	if defaults.Language == "" {
		defaults.Language = "ja"
	}

	return &Store{db: db, defaults: defaults}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getRaw(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return []byte(value), nil
}

// get decodes key into v and reports ErrNotFound for missing keys.
func (s *Store) get(ctx context.Context, key string, v any) error {
	data, err := s.getRaw(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

const upsert = `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, upsert, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// putAll writes every value in one transaction.
func (s *Store) putAll(ctx context.Context, values map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}

		if _, err := stmt.ExecContext(ctx, key, string(data)); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *Store) remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}

// Optimize lets SQLite refresh its query planner statistics and reclaims
// space freed by deleted statistics.
func (s *Store) Optimize(ctx context.Context) error {
	for _, stmt := range []string{`PRAGMA optimize`, `VACUUM`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running %s: %w", stmt, err)
		}
	}
	return nil
}
