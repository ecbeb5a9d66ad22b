// Package config handles loading runtime configuration for the Quizzik server.
// Configuration values (port, database path, catalog API base URL) are read
// from environment variables rather than being hardcoded, so the same binary
// runs in development and on a living-room media box without code changes.
package config

import (
	"os"

	// godotenv reads a .env file and loads its key=value pairs into the
	// process environment — convenient in development; in production real
	// env vars are used instead.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port         string // The TCP port the HTTP server listens on (e.g. "8080")
	DatabasePath string // Path of the sqlite file holding snapshots and history
	DeezerAPIURL string // Base URL of the Deezer catalog API
	Env          string // "development" or "production"
}

// Load reads configuration from environment variables and returns a
// populated Config. A .env file is loaded first if present; the error from
// godotenv.Load is intentionally discarded because a missing .env is normal
// outside development.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "quizzik.db"
	}

	deezerURL := os.Getenv("DEEZER_API_URL")
	if deezerURL == "" {
		deezerURL = "https://api.deezer.com"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	return &Config{
		Port:         port,
		DatabasePath: dbPath,
		DeezerAPIURL: deezerURL,
		Env:          env,
	}
}
