package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles music post database operations.
type PostRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new post, assigning an id if the caller did not.
func (r *PostRepository) Create(ctx context.Context, p *MusicPost) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO music_posts (id, user_id, track_id, track_name, artist, caption, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.TrackID,
		p.TrackName,
		p.Artist,
		p.Caption,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// Feed returns the user's own posts plus posts from everyone they follow,
// newest first.
func (r *PostRepository) Feed(ctx context.Context, userID string, limit int) ([]MusicPost, error) {
	query := `
		SELECT id, user_id, track_id, track_name, artist, caption, created_at
		FROM music_posts
		WHERE user_id = $1
		   OR user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	var posts []MusicPost
	for rows.Next() {
		var p MusicPost
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.TrackID,
			&p.TrackName,
			&p.Artist,
			&p.Caption,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed: %w", err)
	}
	return posts, nil
}
