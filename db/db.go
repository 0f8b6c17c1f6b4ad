package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imports above
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// OpenPostgres opens and pings a Postgres connection through pgx
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	return open(ctx, DriverPostgres, dsn)
}

// OpenSQLite opens (creating the parent directory if needed) a SQLite file.
// ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	conn, err := open(ctx, DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	conn.SetMaxOpenConns(1)
	return conn, nil
}

func open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// EnsureCartSchema creates the key/value table holding persisted carts.
// The statement is valid for both Postgres and SQLite.
func EnsureCartSchema(ctx context.Context, conn *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS cart_storage (
			storage_key TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create cart_storage table: %w", err)
	}
	return nil
}
