// Package storage provides SQLite persistence for cached responses and the
// translation history log.
//
// Information Hiding:
// - SQLite connection management hidden behind the cache.Store and
//   HistoryRecorder interfaces
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/dnclgen/cache"
	"github.com/richinex/dnclgen/model"
)

// DefaultFileName is the database file created inside the cache directory.
const DefaultFileName = "dnclgen.db"

// SqliteStorage implements cache.Store and HistoryRecorder using SQLite.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newStorage(db)
}

// OpenSqliteReadOnly opens an existing database without creating or
// migrating it. Writes through the returned storage fail.
func OpenSqliteReadOnly(path string) (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}
	return &SqliteStorage{db: db}, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return newStorage(db)
}

func newStorage(db *sql.DB) (*SqliteStorage, error) {
	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			cache_key INTEGER PRIMARY KEY,
			model TEXT NOT NULL,
			seed INTEGER NOT NULL,
			max_completion_tokens INTEGER,
			response TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS translations (
			id TEXT PRIMARY KEY,
			cache_key INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			target TEXT NOT NULL,
			cache_hit INTEGER NOT NULL,
			malformed INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_translations_created
		ON translations(created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_translations_key
		ON translations(cache_key);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Load returns the cached response for req.
// Returns ok=false if there is no entry.
func (s *SqliteStorage) Load(ctx context.Context, req model.TranslationRequest) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		"SELECT response FROM responses WHERE cache_key = ?",
		req.Key()).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query response: %w", err)
	}
	return response, true, nil
}

// Store records response for req, replacing any previous entry.
func (s *SqliteStorage) Store(ctx context.Context, req model.TranslationRequest, response string) error {
	record := model.NewCacheRecord(req, response)

	var maxTokens sql.NullInt64
	if record.MaxCompletionTokens != nil {
		maxTokens = sql.NullInt64{Int64: int64(*record.MaxCompletionTokens), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO responses
		(cache_key, model, seed, max_completion_tokens, response)
		VALUES (?, ?, ?, ?, ?)`,
		req.Key(),
		record.Model,
		record.Seed,
		maxTokens,
		record.Response,
	)
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// Verify SqliteStorage implements cache.Store
var _ cache.Store = (*SqliteStorage)(nil)
