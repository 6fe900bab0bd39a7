package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionMarkerRepository handles session marker database operations.
type SessionMarkerRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new session marker, assigning a storage id if the caller
// did not. Markers are never deduplicated; a user may accumulate several,
// and two created in the same millisecond may share a SessionID.
func (r *SessionMarkerRepository) Create(ctx context.Context, m *SessionMarker) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO sessions (id, session_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, m.ID, m.SessionID, m.UserID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session marker: %w", err)
	}
	return nil
}

// FirstForUser retrieves the first marker for a user, oldest first.
func (r *SessionMarkerRepository) FirstForUser(ctx context.Context, userID string) (*SessionMarker, error) {
	query := `
		SELECT id, session_id, user_id, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at, id
		LIMIT 1
	`
	var m SessionMarker
	err := r.pool.QueryRow(ctx, query, userID).Scan(&m.ID, &m.SessionID, &m.UserID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session marker: %w", err)
	}
	return &m, nil
}

// DeleteAllForUser removes every marker for a user in a single statement
// and reports how many existed. Zero is a normal result, not an error.
func (r *SessionMarkerRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_id = $1`
	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting session markers: %w", err)
	}
	return result.RowsAffected(), nil
}
