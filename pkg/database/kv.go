package database

import (
	"context"
	"database/sql"
	"fmt"
)

// KV is a small string key-value store on top of sqlite. The override
// store keeps its whole mapping as one JSON value under a single key, so
// this never needs anything fancier than get/set.
type KV struct {
	DB *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{DB: db}
}

// Get returns the stored value and whether the key was present.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ?
	`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get: %w", err)
	}
	return value, true, nil
}

// Set overwrites whatever was stored under key.
func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
		  value = excluded.value,
		  updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}
