// Package postgres opens the application database and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL, verifies the connection, and configures the
// pool. The caller owns closing the handle.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the idempotent schema for verification records.
func Migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS authentications (
			auth_id       BIGSERIAL PRIMARY KEY,
			source_uid    VARCHAR(32) NOT NULL,
			source_name   VARCHAR(200) NOT NULL,
			dest_uid      VARCHAR(32) NOT NULL,
			dest_name     VARCHAR(200) NOT NULL,
			shared_secret VARCHAR(128) NOT NULL,
			expiry        TIMESTAMPTZ NOT NULL,
			reciprocated  BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS authentications_source_idx ON authentications (source_uid, expiry);
		CREATE INDEX IF NOT EXISTS authentications_dest_idx ON authentications (dest_uid, expiry);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
