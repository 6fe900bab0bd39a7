// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "127.0.0.1:8080"

// Config holds everything the service needs to start.
type Config struct {
	Addr                string
	DatabaseURL         string
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string
	TokenSecret         string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. All missing required variables are reported together.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:                envOr("VIBETUNE_ADDR", DefaultAddr),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SpotifyClientID:     os.Getenv("SPOTIFY_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_SECRET"),
		SpotifyRedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
		TokenSecret:         os.Getenv("TOKEN_SECRET"),
	}

	var missing []string
	for _, v := range []struct{ name, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"SPOTIFY_ID", cfg.SpotifyClientID},
		{"SPOTIFY_SECRET", cfg.SpotifyClientSecret},
		{"SPOTIFY_REDIRECT_URI", cfg.SpotifyRedirectURI},
		{"TOKEN_SECRET", cfg.TokenSecret},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
