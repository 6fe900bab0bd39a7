// Package spotify is a minimal client for the Spotify Web API endpoints the
// profile aggregator needs. Every call is attempted exactly once; a non-2xx
// response surfaces the provider's status and body unchanged.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	userAgent      = "vibetune/1.0"
)

// APIError is a non-2xx response from the Spotify Web API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the Spotify Web API with a caller-supplied access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, primarily for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Spotify Web API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentProfile fetches the authenticated user's profile.
func (c *Client) CurrentProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, accessToken, "/me", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TopTracks fetches the user's top tracks, at most limit.
func (c *Client) TopTracks(ctx context.Context, accessToken string, limit int) ([]Track, error) {
	var resp topTracksResponse
	path := fmt.Sprintf("/me/top/tracks?limit=%d", limit)
	if err := c.get(ctx, accessToken, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// TopArtists fetches the user's top artists, at most limit.
func (c *Client) TopArtists(ctx context.Context, accessToken string, limit int) ([]Artist, error) {
	var resp topArtistsResponse
	path := fmt.Sprintf("/me/top/artists?limit=%d", limit)
	if err := c.get(ctx, accessToken, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// get performs a single authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response for %s: %w", path, err)
	}
	return nil
}
