package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles profile summary database operations.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Put creates or fully overwrites the profile summary for a user.
func (r *ProfileRepository) Put(ctx context.Context, p *ProfileSummary) error {
	query := `
		INSERT INTO user_profiles (user_id, spotify_id, display_name, profile_image, top_tracks, top_artists, top_genres, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			spotify_id = EXCLUDED.spotify_id,
			display_name = EXCLUDED.display_name,
			profile_image = EXCLUDED.profile_image,
			top_tracks = EXCLUDED.top_tracks,
			top_artists = EXCLUDED.top_artists,
			top_genres = EXCLUDED.top_genres,
			last_updated = EXCLUDED.last_updated
	`
	_, err := r.pool.Exec(ctx, query,
		p.UserID,
		p.SpotifyID,
		p.DisplayName,
		p.ProfileImage,
		p.TopTracks,
		p.TopArtists,
		p.TopGenres,
		p.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// Get retrieves the profile summary for a user.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*ProfileSummary, error) {
	query := `
		SELECT user_id, spotify_id, display_name, profile_image, top_tracks, top_artists, top_genres, last_updated
		FROM user_profiles
		WHERE user_id = $1
	`
	var p ProfileSummary
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.SpotifyID,
		&p.DisplayName,
		&p.ProfileImage,
		&p.TopTracks,
		&p.TopArtists,
		&p.TopGenres,
		&p.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// All retrieves every stored profile summary, ordered by user id.
func (r *ProfileRepository) All(ctx context.Context) ([]ProfileSummary, error) {
	query := `
		SELECT user_id, spotify_id, display_name, profile_image, top_tracks, top_artists, top_genres, last_updated
		FROM user_profiles
		ORDER BY user_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []ProfileSummary
	for rows.Next() {
		var p ProfileSummary
		if err := rows.Scan(
			&p.UserID,
			&p.SpotifyID,
			&p.DisplayName,
			&p.ProfileImage,
			&p.TopTracks,
			&p.TopArtists,
			&p.TopGenres,
			&p.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return profiles, nil
}
