package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/desertthunder/filmhub/internal/shared"
)

// LocalStorage is a durable key-value store backed by the local_storage table.
type LocalStorage struct {
	db *sql.DB
}

// NewLocalStorage creates a [LocalStorage] on a migrated database connection.
func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// Get returns the value stored under key and whether it exists.
func (s *LocalStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %q: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set writes all entries in a single transaction, replacing existing values.
func (s *LocalStorage) Set(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			if _, err := tx.ExecContext(ctx, query, key, entries[key]); err != nil {
				return fmt.Errorf("%w: failed to write %q: %v", shared.ErrStorage, key, err)
			}
		}
		return nil
	})
}

// Remove deletes keys in a single transaction. Missing keys are ignored.
func (s *LocalStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key); err != nil {
				return fmt.Errorf("%w: failed to remove %q: %v", shared.ErrStorage, key, err)
			}
		}
		return nil
	})
}
