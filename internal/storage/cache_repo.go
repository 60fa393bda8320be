package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"versecache/internal/content"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// CacheStore defines the interface for the persistent content cache.
type CacheStore interface {
	// Get returns the unit cached under key.
	// Returns nil and ErrNotFound on a miss.
	Get(ctx context.Context, key string) (*content.Unit, error)
	// Put stores unit under key, replacing any previous value.
	Put(ctx context.Context, key string, unit *content.Unit) error
}

// CacheRepo is a SQLite-backed CacheStore.
// Entries never expire; a later Put simply overwrites the row.
type CacheRepo struct {
	db *sql.DB
}

// NewCacheRepo creates a new CacheRepo.
func NewCacheRepo(db *sql.DB) *CacheRepo {
	return &CacheRepo{db: db}
}

// Get returns the unit cached under key.
// Returns nil and ErrNotFound if not found.
func (r *CacheRepo) Get(ctx context.Context, key string) (*content.Unit, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		"SELECT payload FROM content_cache WHERE cache_key = ?",
		key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entry: %w", err)
	}

	var unit content.Unit
	if err := json.Unmarshal([]byte(payload), &unit); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	if len(unit.Items) == 0 {
		return nil, fmt.Errorf("cache entry %s has no items", key)
	}

	return &unit, nil
}

// Put stores unit under key. Provenance is not persisted.
func (r *CacheRepo) Put(ctx context.Context, key string, unit *content.Unit) error {
	if unit == nil {
		return fmt.Errorf("cannot cache nil unit for %s", key)
	}

	stored := *unit
	stored.Provenance = ""
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO content_cache (cache_key, payload, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (cache_key) DO UPDATE SET
		 payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	return nil
}
