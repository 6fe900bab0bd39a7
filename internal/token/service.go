// Package token decides when a stored Spotify access token is still usable
// and refreshes it when it is not.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d-negatu/vibetune/internal/auth"
	"github.com/d-negatu/vibetune/internal/db"
)

// StalenessThreshold is how old an access token may grow before it is
// refreshed, proactively ahead of Spotify's one-hour expiry.
const StalenessThreshold = 50 * time.Minute

// Common errors.
var (
	// ErrUserNotConnected is returned when the user has no stored tokens.
	ErrUserNotConnected = errors.New("user has no stored spotify tokens")

	// ErrRefreshUnavailable is returned when the stored token is stale and
	// there is no refresh token to renew it with.
	ErrRefreshUnavailable = errors.New("stored token is stale and has no refresh token")
)

// Store is the subset of the token repository the policy needs.
type Store interface {
	Get(ctx context.Context, userID string) (*db.TokenRecord, error)
	Put(ctx context.Context, rec *db.TokenRecord) error
	Patch(ctx context.Context, userID, accessToken, rotatedRefreshToken string, now time.Time) error
}

// Exchanger is the provider-facing half of the token lifecycle.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code string) (*auth.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Token, error)
}

// Service implements the token freshness policy over a Store and an
// Exchanger. It carries no cross-call state of its own; every operation is
// a complete read-decide-write unit.
type Service struct {
	store     Store
	exchanger Exchanger
	cache     *MemoryCache
	threshold time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache attaches a best-effort in-memory access token cache. The cache
// only ever short-circuits a store read for a token known to still be fresh;
// it is never authoritative and a second process instance will not see it.
func WithCache(c *MemoryCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithThreshold overrides the staleness threshold.
func WithThreshold(d time.Duration) Option {
	return func(s *Service) {
		s.threshold = d
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a token Service.
func New(store Store, exchanger Exchanger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		exchanger: exchanger,
		threshold: StalenessThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect performs the first-time authorization-code exchange and stores
// the resulting token pair.
func (s *Service) Connect(ctx context.Context, userID, code string) error {
	tok, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	rec := &db.TokenRecord{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("storing tokens: %w", err)
	}

	if s.cache != nil {
		s.cache.Save(userID, tok.AccessToken, s.now().Add(s.threshold))
	}
	return nil
}

// EnsureFresh returns a usable access token for the user, refreshing it
// first when the stored one is older than the staleness threshold. The
// second return reports whether a refresh happened.
//
// Two racing callers may both observe staleness and both refresh; the
// provider yields a valid token either way, so the duplicate round trip is
// accepted rather than serialized.
func (s *Service) EnsureFresh(ctx context.Context, userID string) (string, bool, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Load(userID, s.now()); ok {
			return cached, false, nil
		}
	}

	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return "", false, ErrUserNotConnected
	}
	if err != nil {
		return "", false, fmt.Errorf("loading stored tokens: %w", err)
	}

	freshUntil := tokenTimestamp(rec).Add(s.threshold)
	if s.now().Before(freshUntil) {
		if s.cache != nil {
			s.cache.Save(userID, rec.AccessToken, freshUntil)
		}
		return rec.AccessToken, false, nil
	}

	if rec.RefreshToken == "" {
		return "", false, ErrRefreshUnavailable
	}

	tok, err := s.exchanger.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		return "", false, err
	}

	now := s.now()
	if err := s.store.Patch(ctx, userID, tok.AccessToken, tok.RefreshToken, now); err != nil {
		return "", false, fmt.Errorf("storing refreshed token: %w", err)
	}

	if s.cache != nil {
		s.cache.Save(userID, tok.AccessToken, now.Add(s.threshold))
	}
	return tok.AccessToken, true, nil
}

// tokenTimestamp returns the record's last refresh time, falling back to
// its creation time for records that have never been refreshed.
func tokenTimestamp(rec *db.TokenRecord) time.Time {
	if !rec.UpdatedAt.IsZero() {
		return rec.UpdatedAt
	}
	return rec.CreatedAt
}
