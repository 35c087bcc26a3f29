// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds everything the process reads from its environment. Spotify
// credentials are not required at boot: without them, catalog operations
// fail with a configuration error while the rest of the app keeps working.
type Config struct {
	// listen port, default 8080
	Port int

	// sqlite database file; ":memory:" for ephemeral
	DatabasePath string

	SpotifyClientID     string
	SpotifyClientSecret string

	// signs session tokens; required to serve
	SessionSecret string

	// optional shared secret gating the unauthenticated refresh trigger
	CronSecret string
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := Config{
		Port:                k.Int("port"),
		DatabasePath:        k.String("database_path"),
		SpotifyClientID:     k.String("spotify_client_id"),
		SpotifyClientSecret: k.String("spotify_client_secret"),
		SessionSecret:       k.String("session_secret"),
		CronSecret:          k.String("cron_secret"),
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "musicrank.db"
	}

	return cfg, nil
}
