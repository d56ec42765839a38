package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVRepository is a string key-value store backed by the kv table.
type KVRepository struct {
	db *DB
}

// NewKVRepository creates a new KVRepository.
func NewKVRepository(db *DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key and whether it exists.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
