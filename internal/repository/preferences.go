package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresPreferenceRepository is a key-value store of integer preferences.
type PostgresPreferenceRepository struct {
	DB *sql.DB
}

// NewPostgresPreferenceRepository creates a PostgresPreferenceRepository with the given database connection.
func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{DB: db}
}

// GetInt64 returns the value stored under key. The bool is false when the key is unset.
func (r *PostgresPreferenceRepository) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	var v int64
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return v, true, nil
}

// PutInt64 stores value under key, replacing any previous value.
func (r *PostgresPreferenceRepository) PutInt64(ctx context.Context, key string, value int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put preference %q: %w", key, err)
	}
	return nil
}
