// Package db provides PostgreSQL-backed implementations of the record and
// content-chunk stores.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Records returns the RecordStore backed by this database.
func (db *DB) Records() *RecordStore {
	return &RecordStore{pool: db.pool}
}

// Chunks returns the ChunkStore backed by this database.
func (db *DB) Chunks() *ChunkStore {
	return &ChunkStore{pool: db.pool}
}
