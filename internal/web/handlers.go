package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/d-negatu/vibetune/internal/auth"
	"github.com/d-negatu/vibetune/internal/db"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 100
)

// TokenService is the token lifecycle surface the handlers use.
type TokenService interface {
	Connect(ctx context.Context, userID, code string) error
	EnsureFresh(ctx context.Context, userID string) (string, bool, error)
}

// ProfileService builds and reads profile summaries.
type ProfileService interface {
	BuildSummary(ctx context.Context, userID string) (*db.ProfileSummary, error)
	Get(ctx context.Context, userID string) (*db.ProfileSummary, error)
}

// SessionService manages the legacy session markers.
type SessionService interface {
	Create(ctx context.Context, userID string) (string, error)
	FindByUserID(ctx context.Context, userID string) (string, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

// DiscoverService recommends users with similar taste.
type DiscoverService interface {
	SimilarUsers(ctx context.Context, userID string) ([]string, error)
}

// TokenIssuer mints and verifies the app's bearer tokens.
type TokenIssuer interface {
	Mint(userID string) (string, error)
	Verify(tokenString string) (string, error)
}

// PostStore persists and lists music posts.
type PostStore interface {
	Create(ctx context.Context, p *db.MusicPost) error
	Feed(ctx context.Context, userID string, limit int) ([]db.MusicPost, error)
}

// FollowStore persists follow relationships.
type FollowStore interface {
	Create(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	Following(ctx context.Context, followerID string) ([]string, error)
}

// AuthURLBuilder builds the provider authorize URL for a state value.
type AuthURLBuilder interface {
	AuthCodeURL(state string) string
}

// HandlerDeps bundles everything the handlers depend on.
type HandlerDeps struct {
	Tokens   TokenService
	Profiles ProfileService
	Sessions SessionService
	Discover DiscoverService
	Issuer   TokenIssuer
	Posts    PostStore
	Follows  FollowStore
	AuthURL  AuthURLBuilder
	Logger   zerolog.Logger
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	tokens   TokenService
	profiles ProfileService
	sessions SessionService
	discover DiscoverService
	issuer   TokenIssuer
	posts    PostStore
	follows  FollowStore
	authURL  AuthURLBuilder
	logger   zerolog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(d HandlerDeps) *Handlers {
	return &Handlers{
		tokens:   d.Tokens,
		profiles: d.Profiles,
		sessions: d.Sessions,
		discover: d.Discover,
		issuer:   d.Issuer,
		posts:    d.Posts,
		follows:  d.Follows,
		authURL:  d.AuthURL,
		logger:   d.Logger,
	}
}

// ExchangeCode trades an authorization code for tokens and stores them
// (POST /exchange-code).
func (h *Handlers) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code   string `json:"code"`
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" || req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing code or userId")
		return
	}

	if err := h.tokens.Connect(r.Context(), req.UserID, req.Code); err != nil {
		// The code exchange is the one endpoint where the provider's own
		// status is meaningful to the client (expired or reused codes come
		// back as 4xx), so it passes through instead of collapsing to 500.
		var exchangeErr *auth.ExchangeError
		if errors.As(err, &exchangeErr) {
			status := exchangeErr.StatusCode
			if status < 400 {
				status = http.StatusInternalServerError
			}
			writeMessage(w, status, fmt.Sprintf("Token exchange failed: %s", exchangeErr.Body))
			return
		}
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Tokens stored successfully")
}

// RefreshToken returns a fresh access token for the user, refreshing the
// stored one when it is stale (POST /refresh-token).
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	accessToken, _, err := h.tokens.EnsureFresh(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		AccessToken string `json:"accessToken"`
	}{accessToken})
}

// GetCurrentToken returns a fresh access token for the user identified
// either by a Bearer token or by the request body (POST /get-current-token).
func (h *Handlers) GetCurrentToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	// The body is optional when a Bearer token is supplied.
	_ = decodeJSON(r, &req)

	userID := req.UserID
	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}
		uid, err := h.issuer.Verify(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		userID = uid
	}
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	accessToken, refreshed, err := h.tokens.EnsureFresh(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		AccessToken string `json:"accessToken"`
		UserID      string `json:"userId"`
		Refreshed   bool   `json:"refreshed"`
	}{accessToken, userID, refreshed})
}

// FetchProfileData aggregates and stores the user's Spotify profile summary
// (POST /fetch-profile-data).
func (h *Handlers) FetchProfileData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	if _, err := h.profiles.BuildSummary(r.Context(), req.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Profile data stored successfully")
}

// GetProfile returns the stored profile summary for a user
// (POST /get-profile).
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	summary, err := h.profiles.Get(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// CreateSession appends a session marker for the user (POST /create-session).
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		SessionID string `json:"sessionId"`
	}{sessionID})
}

// GetSession returns the first session marker for the user
// (POST /get-session).
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	sessionID, err := h.sessions.FindByUserID(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		SessionID string `json:"sessionId"`
	}{sessionID})
}

// DeleteSession removes every session marker for the user
// (POST /delete-session).
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	deleted, err := h.sessions.DeleteAllForUser(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Deleted int64  `json:"deleted"`
	}{"Sessions deleted", deleted})
}

// IssueToken mints an app bearer token for the user (POST /issue-token).
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	tok, err := h.issuer.Mint(req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{tok})
}

// GetAuthURL returns the Spotify authorize URL and the state the client
// should verify on callback (POST /get-auth-url).
func (h *Handlers) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		URL   string `json:"url"`
		State string `json:"state"`
	}{h.authURL.AuthCodeURL(state), state})
}

// CreatePost stores a shared track with a caption (POST /create-post).
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		TrackID   string `json:"trackId"`
		TrackName string `json:"trackName"`
		Artist    string `json:"artist"`
		Caption   string `json:"caption"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.TrackID == "" || req.TrackName == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId, trackId or trackName")
		return
	}

	post := &db.MusicPost{
		UserID:    req.UserID,
		TrackID:   req.TrackID,
		TrackName: req.TrackName,
		Artist:    req.Artist,
		Caption:   req.Caption,
	}
	if err := h.posts.Create(r.Context(), post); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		PostID string `json:"postId"`
	}{post.ID.String()})
}

// GetFeed returns the user's feed, newest first (POST /get-feed).
func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Limit  int    `json:"limit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	posts, err := h.posts.Feed(r.Context(), req.UserID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []db.MusicPost{}
	}

	writeJSON(w, http.StatusOK, struct {
		Posts []db.MusicPost `json:"posts"`
	}{posts})
}

// FollowUser records a follow relationship (POST /follow-user).
func (h *Handlers) FollowUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.TargetID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId or targetId")
		return
	}
	if req.UserID == req.TargetID {
		writeMessage(w, http.StatusBadRequest, "Cannot follow yourself")
		return
	}

	if err := h.follows.Create(r.Context(), req.UserID, req.TargetID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Now following "+req.TargetID)
}

// UnfollowUser removes a follow relationship (POST /unfollow-user).
func (h *Handlers) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.TargetID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId or targetId")
		return
	}

	if err := h.follows.Delete(r.Context(), req.UserID, req.TargetID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Unfollowed "+req.TargetID)
}

// GetFollowing returns the ids of users the given user follows
// (POST /get-following).
func (h *Handlers) GetFollowing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	following, err := h.follows.Following(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if following == nil {
		following = []string{}
	}

	writeJSON(w, http.StatusOK, struct {
		Following []string `json:"following"`
	}{following})
}

// DiscoverUsers returns users with similar taste (POST /discover-users).
func (h *Handlers) DiscoverUsers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing userId")
		return
	}

	userIDs, err := h.discover.SimilarUsers(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if userIDs == nil {
		userIDs = []string{}
	}

	writeJSON(w, http.StatusOK, struct {
		UserIDs []string `json:"userIds"`
	}{userIDs})
}
