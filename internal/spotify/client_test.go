package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient points a Client at a stub API server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestCurrentProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("path = %q, want /me", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer AT1" {
			t.Errorf("Authorization = %q, want Bearer AT1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"spotify-u1","display_name":"Dawit","images":[{"url":"https://img/1.jpg"}]}`))
	}))

	profile, err := client.CurrentProfile(context.Background(), "AT1")
	if err != nil {
		t.Fatalf("CurrentProfile() error = %v", err)
	}
	if profile.ID != "spotify-u1" {
		t.Errorf("ID = %q, want spotify-u1", profile.ID)
	}
	if profile.DisplayName != "Dawit" {
		t.Errorf("DisplayName = %q, want Dawit", profile.DisplayName)
	}
	if len(profile.Images) != 1 || profile.Images[0].URL != "https://img/1.jpg" {
		t.Errorf("Images = %v, want one image", profile.Images)
	}
}

func TestTopTracks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/top/tracks" {
			t.Errorf("path = %q, want /me/top/tracks", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"name":"Track A","artists":[{"name":"Artist 1"},{"name":"Artist 2"}]},
			{"name":"Track B","artists":[{"name":"Artist 3"}]}
		]}`))
	}))

	tracks, err := client.TopTracks(context.Background(), "AT1", 10)
	if err != nil {
		t.Fatalf("TopTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(tracks))
	}
	if tracks[0].Name != "Track A" || len(tracks[0].Artists) != 2 {
		t.Errorf("tracks[0] = %+v, want Track A with two artists", tracks[0])
	}
}

func TestTopArtists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/top/artists" {
			t.Errorf("path = %q, want /me/top/artists", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"name":"Artist 1","genres":["indie rock","dream pop"]}]}`))
	}))

	artists, err := client.TopArtists(context.Background(), "AT1", 10)
	if err != nil {
		t.Fatalf("TopArtists() error = %v", err)
	}
	if len(artists) != 1 {
		t.Fatalf("len(artists) = %d, want 1", len(artists))
	}
	if len(artists[0].Genres) != 2 || artists[0].Genres[0] != "indie rock" {
		t.Errorf("Genres = %v, want [indie rock dream pop]", artists[0].Genres)
	}
}

func TestGet_NonOKStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"expired token", http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"status":429,"message":"rate limit"}}`},
		{"server error", http.StatusInternalServerError, "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.CurrentProfile(context.Background(), "AT1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Body != tt.body {
				t.Errorf("Body = %q, want %q", apiErr.Body, tt.body)
			}
		})
	}
}

func TestGet_MalformedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	if _, err := client.CurrentProfile(context.Background(), "AT1"); err == nil {
		t.Fatal("CurrentProfile() error = nil, want parse error")
	}
}
