// Command vibetune runs the Vibetune social music backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/d-negatu/vibetune/internal/auth"
	"github.com/d-negatu/vibetune/internal/authtoken"
	"github.com/d-negatu/vibetune/internal/config"
	"github.com/d-negatu/vibetune/internal/db"
	"github.com/d-negatu/vibetune/internal/discover"
	"github.com/d-negatu/vibetune/internal/profile"
	"github.com/d-negatu/vibetune/internal/session"
	"github.com/d-negatu/vibetune/internal/spotify"
	"github.com/d-negatu/vibetune/internal/token"
	"github.com/d-negatu/vibetune/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "vibetune").Logger()

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	exchanger := auth.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	tokens := token.New(database.Tokens(), exchanger, token.WithCache(token.NewMemoryCache()))
	profiles := profile.New(tokens, spotify.NewClient(), database.Profiles())
	sessions := session.New(database.Sessions())
	discovery := discover.New(database.Profiles(), discover.Config{})
	issuer := authtoken.New(cfg.TokenSecret)

	handlers := web.NewHandlers(web.HandlerDeps{
		Tokens:   tokens,
		Profiles: profiles,
		Sessions: sessions,
		Discover: discovery,
		Issuer:   issuer,
		Posts:    database.Posts(),
		Follows:  database.Follows(),
		AuthURL:  exchanger,
		Logger:   logger,
	})

	server := web.NewServer(web.ServerConfig{
		Addr:     cfg.Addr,
		Handlers: handlers,
		Logger:   logger,
	})

	return server.Run()
}
