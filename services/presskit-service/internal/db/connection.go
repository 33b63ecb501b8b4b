package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the submissions table. Rows are only ever inserted.
const Schema = `
	CREATE TABLE IF NOT EXISTS presskit_requests (
	    id UUID PRIMARY KEY,
	    email VARCHAR(254) NOT NULL,
	    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	    user_agent TEXT,
	    ip TEXT,
	    referer TEXT,
	    language TEXT,
	    country TEXT,
	    city TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_presskit_requests_created_at ON presskit_requests(created_at);
	CREATE INDEX IF NOT EXISTS idx_presskit_requests_email ON presskit_requests(email);
`

// Connect opens a pool and checks the connection.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, fmt.Errorf("database.url not configured")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies Schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
