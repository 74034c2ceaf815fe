package storage

import (
	"context"
	"fmt"
)

// HistoryEntry records one Translate call.
type HistoryEntry struct {
	ID        string // Request id (uuid)
	Key       int64  // Cache key of the request
	Provider  string
	Model     string
	Target    string
	CacheHit  bool
	Malformed bool  // The answer was a diagnostic for an unexpected reply
	CreatedAt int64 // Unix timestamp
}

// HistoryRecorder persists translation history.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// Record appends entry to the history log.
func (s *SqliteStorage) Record(ctx context.Context, entry HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations
		(id, cache_key, provider, model, target, cache_hit, malformed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Key,
		entry.Provider,
		entry.Model,
		entry.Target,
		entry.CacheHit,
		entry.Malformed,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record translation: %w", err)
	}
	return nil
}

// ListHistory returns the most recent entries first. limit <= 0 means no limit.
func (s *SqliteStorage) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cache_key, provider, model, target, cache_hit, malformed, created_at
		FROM translations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{} // Start with empty slice, not nil
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Key, &e.Provider, &e.Model, &e.Target, &e.CacheHit, &e.Malformed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// Verify SqliteStorage implements HistoryRecorder
var _ HistoryRecorder = (*SqliteStorage)(nil)
