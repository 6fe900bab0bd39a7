package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowRepository handles follow relationship database operations.
type FollowRepository struct {
	pool *pgxpool.Pool
}

// Create records that follower follows followee. Following someone twice
// is a no-op.
func (r *FollowRepository) Create(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("inserting follow: %w", err)
	}
	return nil
}

// Delete removes a follow relationship. Unfollowing someone never followed
// is a no-op.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	_, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	return nil
}

// Following returns the ids of every user the follower follows.
func (r *FollowRepository) Following(ctx context.Context, followerID string) ([]string, error) {
	query := `
		SELECT followee_id
		FROM follows
		WHERE follower_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, followerID)
	if err != nil {
		return nil, fmt.Errorf("querying follows: %w", err)
	}
	defer rows.Close()

	following := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning follow: %w", err)
		}
		following = append(following, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating follows: %w", err)
	}
	return following, nil
}
