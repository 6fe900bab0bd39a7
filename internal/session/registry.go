// Package session manages the legacy per-user session markers. The markers
// are isolated from authentication: nothing in the token or profile
// workflows consults them.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/d-negatu/vibetune/internal/db"
)

// Store is the marker repository surface the registry needs.
type Store interface {
	Create(ctx context.Context, m *db.SessionMarker) error
	FirstForUser(ctx context.Context, userID string) (*db.SessionMarker, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

// Registry creates, looks up and deletes session markers.
type Registry struct {
	store Store
	now   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a Registry.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create appends a new marker for the user and returns its id. Markers are
// never deduplicated.
func (r *Registry) Create(ctx context.Context, userID string) (string, error) {
	now := r.now()
	m := &db.SessionMarker{
		SessionID: MarkerID(userID, now),
		UserID:    userID,
		CreatedAt: now,
	}
	if err := r.store.Create(ctx, m); err != nil {
		return "", fmt.Errorf("creating session marker: %w", err)
	}
	return m.SessionID, nil
}

// FindByUserID returns the id of the first marker for the user, or
// db.ErrNotFound when none exist.
func (r *Registry) FindByUserID(ctx context.Context, userID string) (string, error) {
	m, err := r.store.FirstForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return m.SessionID, nil
}

// DeleteAllForUser removes every marker for the user atomically and reports
// how many existed. Deleting when none exist reports 0, not an error.
func (r *Registry) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return r.store.DeleteAllForUser(ctx, userID)
}

// MarkerID builds a marker id from the user id and creation time.
func MarkerID(userID string, at time.Time) string {
	return fmt.Sprintf("session_%s_%d", userID, at.UnixMilli())
}
