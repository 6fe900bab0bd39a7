package db

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecord holds a user's Spotify credentials. One row per user.
// CreatedAt is set on the first write and never changes; UpdatedAt advances
// every time the access token is refreshed.
type TokenRecord struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TrackSummary is a denormalized top-track entry on a ProfileSummary.
// Artist is a comma-joined list of artist names.
type TrackSummary struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// ProfileSummary is the denormalized Spotify profile the feed UI displays.
// It is overwritten wholesale each time the aggregator runs.
type ProfileSummary struct {
	UserID       string         `json:"userId"`
	SpotifyID    string         `json:"spotifyId"`
	DisplayName  string         `json:"displayName"`
	ProfileImage string         `json:"profileImage"`
	TopTracks    []TrackSummary `json:"topTracks"`
	TopArtists   []string       `json:"topArtists"`
	TopGenres    []string       `json:"topGenres"`
	LastUpdated  time.Time      `json:"lastUpdated"`
}

// SessionMarker is a legacy per-user session document. Multiple markers may
// exist for the same user; nothing in the token or profile workflows reads
// them. ID is the storage key; SessionID is the client-facing marker id and
// is not unique (two markers created in the same millisecond share it).
type SessionMarker struct {
	ID        uuid.UUID
	SessionID string
	UserID    string
	CreatedAt time.Time
}

// MusicPost is a shared track with a caption.
type MusicPost struct {
	ID        uuid.UUID `json:"postId"`
	UserID    string    `json:"userId"`
	TrackID   string    `json:"trackId"`
	TrackName string    `json:"trackName"`
	Artist    string    `json:"artist"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow links a follower to the user they follow.
type Follow struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}
