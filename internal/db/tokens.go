package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository handles Spotify token database operations.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the token record for a user.
func (r *TokenRepository) Get(ctx context.Context, userID string) (*TokenRecord, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_in, created_at, updated_at
		FROM tokens
		WHERE user_id = $1
	`
	var rec TokenRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.AccessToken,
		&rec.RefreshToken,
		&rec.ExpiresIn,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	return &rec, nil
}

// Put creates or fully overwrites the token record for a user.
// created_at is preserved across overwrites.
func (r *TokenRepository) Put(ctx context.Context, rec *TokenRecord) error {
	query := `
		INSERT INTO tokens (user_id, access_token, refresh_token, expires_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in = EXCLUDED.expires_in,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.UserID,
		rec.AccessToken,
		rec.RefreshToken,
		rec.ExpiresIn,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting tokens: %w", err)
	}
	return nil
}

// Patch updates the access token and updated_at after a refresh. The stored
// refresh token is only overwritten when the provider rotated it
// (rotatedRefreshToken non-empty).
func (r *TokenRepository) Patch(ctx context.Context, userID, accessToken, rotatedRefreshToken string, now time.Time) error {
	query := `
		UPDATE tokens
		SET access_token = $2,
		    refresh_token = CASE WHEN $3 <> '' THEN $3 ELSE refresh_token END,
		    updated_at = $4
		WHERE user_id = $1
	`
	result, err := r.pool.Exec(ctx, query, userID, accessToken, rotatedRefreshToken, now)
	if err != nil {
		return fmt.Errorf("patching tokens: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
