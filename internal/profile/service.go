// Package profile builds the denormalized profile summaries shown in the feed.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/d-negatu/vibetune/internal/db"
	"github.com/d-negatu/vibetune/internal/spotify"
)

// topLimit caps top tracks, top artists and derived genres.
const topLimit = 10

// TokenSource provides a fresh Spotify access token for a user.
type TokenSource interface {
	EnsureFresh(ctx context.Context, userID string) (string, bool, error)
}

// Store persists profile summaries.
type Store interface {
	Put(ctx context.Context, p *db.ProfileSummary) error
	Get(ctx context.Context, userID string) (*db.ProfileSummary, error)
}

// Service aggregates Spotify profile data into a ProfileSummary.
type Service struct {
	tokens  TokenSource
	spotify *spotify.Client
	store   Store
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a profile Service.
func New(tokens TokenSource, client *spotify.Client, store Store, opts ...Option) *Service {
	s := &Service{
		tokens:  tokens,
		spotify: client,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildSummary fetches the user's profile, top tracks and top artists from
// Spotify and overwrites the stored summary. Each upstream call is attempted
// once; nothing is written unless every fetch succeeds.
func (s *Service) BuildSummary(ctx context.Context, userID string) (*db.ProfileSummary, error) {
	accessToken, _, err := s.tokens.EnsureFresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	me, err := s.spotify.CurrentProfile(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	tracks, err := s.spotify.TopTracks(ctx, accessToken, topLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	artists, err := s.spotify.TopArtists(ctx, accessToken, topLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	summary := &db.ProfileSummary{
		UserID:       userID,
		SpotifyID:    me.ID,
		DisplayName:  me.DisplayName,
		ProfileImage: firstImage(me.Images),
		TopTracks:    convertTracks(tracks),
		TopArtists:   artistNames(artists),
		TopGenres:    topGenres(artists, topLimit),
		LastUpdated:  s.now(),
	}

	if err := s.store.Put(ctx, summary); err != nil {
		return nil, fmt.Errorf("storing profile summary: %w", err)
	}
	return summary, nil
}

// Get returns the stored summary for a user.
func (s *Service) Get(ctx context.Context, userID string) (*db.ProfileSummary, error) {
	return s.store.Get(ctx, userID)
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// convertTracks joins each track's artist names with ", ".
func convertTracks(tracks []spotify.Track) []db.TrackSummary {
	out := make([]db.TrackSummary, len(tracks))
	for i, t := range tracks {
		names := make([]string, len(t.Artists))
		for j, a := range t.Artists {
			names[j] = a.Name
		}
		out[i] = db.TrackSummary{
			Name:   t.Name,
			Artist: strings.Join(names, ", "),
		}
	}
	return out
}

func artistNames(artists []spotify.Artist) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

// topGenres flattens each artist's genre list in artist order and truncates
// to limit entries. Duplicates are kept.
func topGenres(artists []spotify.Artist, limit int) []string {
	genres := []string{}
	for _, a := range artists {
		for _, g := range a.Genres {
			genres = append(genres, g)
			if len(genres) == limit {
				return genres
			}
		}
	}
	return genres
}
