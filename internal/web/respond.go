package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/d-negatu/vibetune/internal/auth"
	"github.com/d-negatu/vibetune/internal/authtoken"
	"github.com/d-negatu/vibetune/internal/db"
	"github.com/d-negatu/vibetune/internal/spotify"
	"github.com/d-negatu/vibetune/internal/token"
)

// messageResponse is the uniform error and status envelope.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// writeError maps a service error onto the HTTP error taxonomy: 401/404/500
// with a JSON message. Provider failures surface as 500 with the provider's
// body in the message; only the code exchange endpoint passes the provider's
// status through, and it does so before reaching here.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var exchangeErr *auth.ExchangeError
	var apiErr *spotify.APIError

	switch {
	case errors.As(err, &exchangeErr):
		writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("Token refresh failed: %s", exchangeErr.Body))
	case errors.As(err, &apiErr):
		writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("Spotify request failed: %s", apiErr.Body))
	case errors.Is(err, token.ErrUserNotConnected):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, db.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, authtoken.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Invalid authorization token")
	case errors.Is(err, token.ErrRefreshUnavailable):
		writeMessage(w, http.StatusInternalServerError, "No refresh token available")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
