// Package web provides the HTTP API for the Vibetune backend.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr     string
	Handlers *Handlers
	Logger   zerolog.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router chi.Router
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) *Server {
	router := chi.NewRouter()

	s := &Server{
		router: router,
		logger: cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.Handlers)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the API. Every endpoint is POST-only;
// other verbs get a 405 with the JSON error envelope.
func (s *Server) setupRoutes(h *Handlers) {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Token lifecycle
	s.router.Post("/exchange-code", h.ExchangeCode)
	s.router.Post("/refresh-token", h.RefreshToken)
	s.router.Post("/get-current-token", h.GetCurrentToken)
	s.router.Post("/get-auth-url", h.GetAuthURL)
	s.router.Post("/issue-token", h.IssueToken)

	// Profile
	s.router.Post("/fetch-profile-data", h.FetchProfileData)
	s.router.Post("/get-profile", h.GetProfile)

	// Sessions (legacy)
	s.router.Post("/create-session", h.CreateSession)
	s.router.Post("/get-session", h.GetSession)
	s.router.Post("/delete-session", h.DeleteSession)

	// Social
	s.router.Post("/create-post", h.CreatePost)
	s.router.Post("/get-feed", h.GetFeed)
	s.router.Post("/follow-user", h.FollowUser)
	s.router.Post("/unfollow-user", h.UnfollowUser)
	s.router.Post("/get-following", h.GetFollowing)
	s.router.Post("/discover-users", h.DiscoverUsers)
}

// requestLogger logs one structured line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info().Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
