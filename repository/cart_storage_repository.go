package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"origen-dotacion/db"

	"go.uber.org/zap"
)

// CartStorageRepository persists carts in the cart_storage table.
// Works against Postgres (pgx) and SQLite; only the placeholders differ.
type CartStorageRepository struct {
	conn     *sql.DB
	getQuery string
	setQuery string
	logger   *zap.SugaredLogger
}

// NewCartStorageRepository creates a new CartStorageRepository for the given driver
func NewCartStorageRepository(conn *sql.DB, driver string, logger *zap.SugaredLogger) *CartStorageRepository {
	getQuery := `SELECT value FROM cart_storage WHERE storage_key = $1`
	setQuery := `
		INSERT INTO cart_storage (storage_key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (storage_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	if driver == db.DriverSQLite {
		getQuery = `SELECT value FROM cart_storage WHERE storage_key = ?`
		setQuery = `
			INSERT INTO cart_storage (storage_key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (storage_key)
			DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`
	}
	return &CartStorageRepository{
		conn:     conn,
		getQuery: getQuery,
		setQuery: setQuery,
		logger:   logger,
	}
}

// Ensure CartStorageRepository implements CartStorageInterface
var _ CartStorageInterface = (*CartStorageRepository)(nil)

// Get reads the raw value stored under key
func (r *CartStorageRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRowContext(ctx, r.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Errorf("❌ CartStorage.Get: Error reading key=%s: %v", key, err)
		return "", false, fmt.Errorf("failed to read cart storage: %w", err)
	}
	return value, true, nil
}

// Set writes the whole value under key, replacing any previous value
func (r *CartStorageRepository) Set(ctx context.Context, key string, value string) error {
	if _, err := r.conn.ExecContext(ctx, r.setQuery, key, value); err != nil {
		r.logger.Errorf("❌ CartStorage.Set: Error writing key=%s: %v", key, err)
		return fmt.Errorf("failed to write cart storage: %w", err)
	}
	return nil
}
