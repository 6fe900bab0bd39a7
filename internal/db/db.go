// Package db provides PostgreSQL persistence for the Vibetune backend.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool       *pgxpool.Pool
	schemaOnce sync.Once
	schemaErr  error
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// EnsureSchema applies the embedded schema. Every statement is idempotent
// (CREATE ... IF NOT EXISTS) and the call itself runs at most once per
// process regardless of how many components ask for it.
func (db *DB) EnsureSchema(ctx context.Context) error {
	db.schemaOnce.Do(func() {
		if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
			db.schemaErr = fmt.Errorf("applying schema: %w", err)
		}
	})
	return db.schemaErr
}

// Tokens returns a TokenRepository.
func (db *DB) Tokens() *TokenRepository {
	return &TokenRepository{pool: db.pool}
}

// Profiles returns a ProfileRepository.
func (db *DB) Profiles() *ProfileRepository {
	return &ProfileRepository{pool: db.pool}
}

// Sessions returns a SessionMarkerRepository.
func (db *DB) Sessions() *SessionMarkerRepository {
	return &SessionMarkerRepository{pool: db.pool}
}

// Posts returns a PostRepository.
func (db *DB) Posts() *PostRepository {
	return &PostRepository{pool: db.pool}
}

// Follows returns a FollowRepository.
func (db *DB) Follows() *FollowRepository {
	return &FollowRepository{pool: db.pool}
}
