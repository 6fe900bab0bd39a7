// Package auth performs the OAuth2 exchanges with the Spotify accounts service.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Token is the result of a code exchange or a refresh.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ExchangeError carries the provider's response for a failed token request.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Exchanger trades authorization codes and refresh tokens for access tokens.
// Both operations are single-shot network calls with no retry.
type Exchanger struct {
	conf *oauth2.Config
}

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithEndpoint overrides the provider endpoint, primarily for tests.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(e *Exchanger) {
		e.conf.Endpoint = ep
	}
}

// New creates an Exchanger for the given Spotify app credentials.
// The redirect URI must match the one registered with Spotify.
func New(clientID, clientSecret, redirectURI string, opts ...Option) *Exchanger {
	e := &Exchanger{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyauth.AuthURL,
				TokenURL:  spotifyauth.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: []string{
				spotifyauth.ScopeUserReadPrivate,
				spotifyauth.ScopeUserTopRead,
			},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExchangeCode trades an authorization code for a token pair.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	tok, err := e.conf.Exchange(ctx, code)
	if err != nil {
		return nil, wrapRetrieveError("exchanging authorization code", err)
	}
	return fromOAuth2(tok), nil
}

// Refresh mints a new access token from a refresh token. When the provider
// rotates the refresh token the returned Token carries the new value;
// otherwise RefreshToken is empty and the caller keeps the stored one.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := e.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, wrapRetrieveError("refreshing access token", err)
	}
	t := fromOAuth2(tok)
	if t.RefreshToken == refreshToken {
		t.RefreshToken = ""
	}
	return t, nil
}

// AuthCodeURL returns the Spotify authorize URL for the given state.
func (e *Exchanger) AuthCodeURL(state string) string {
	return e.conf.AuthCodeURL(state)
}

// GenerateState creates a random state string for the authorize redirect.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func fromOAuth2(tok *oauth2.Token) *Token {
	expiresIn := int(tok.ExpiresIn)
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}
}

func wrapRetrieveError(op string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return fmt.Errorf("%s: %w", op, &ExchangeError{StatusCode: status, Body: string(rErr.Body)})
	}
	return fmt.Errorf("%s: %w", op, err)
}
