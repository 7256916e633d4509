package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const lastSuccessfulSyncKey = "last_successful_sync"

// StateRepo is the key/value sync_state table.
type StateRepo struct {
	DB *sql.DB
}

func NewStateRepo(db *sql.DB) *StateRepo {
	return &StateRepo{DB: db}
}

func (r *StateRepo) Set(ctx context.Context, key, value string, at time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, at.UTC()); err != nil {
		return fmt.Errorf("set sync state %s: %w", key, err)
	}
	return nil
}

// Get returns "", false when key is unset.
func (r *StateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get sync state %s: %w", key, err)
	}
	return v, true, nil
}

// LastSuccessfulSync returns nil when no full run has succeeded yet.
func (r *StateRepo) LastSuccessfulSync(ctx context.Context) (*time.Time, error) {
	v, ok, err := r.Get(ctx, lastSuccessfulSyncKey)
	if err != nil || !ok {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("parse last successful sync %q: %w", v, err)
	}
	return &t, nil
}

func (r *StateRepo) MarkSuccessfulSync(ctx context.Context, at time.Time) error {
	return r.Set(ctx, lastSuccessfulSyncKey, at.UTC().Format(time.RFC3339), at)
}
