package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is read from the environment (after any .env load in main).
type Config struct {
	StoreDriver string // "json", "postgres", or "memory"
	StorePath   string // json store file
	DatabaseURL string // postgres store DSN

	APIBaseURL string
	UserID     int

	RequireRemoteAdd bool
	CacheStale       time.Duration
}

// Load reads configuration from the environment with working defaults.
func Load() *Config {
	driver := os.Getenv("REMINDO_STORE")
	if driver == "" {
		driver = "json"
	}

	path := os.Getenv("REMINDO_DB_PATH")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = filepath.Join(home, ".remindo", "todos.json")
	}

	stale := time.Duration(0) // always stale: every /list re-reads the store
	if v := os.Getenv("REMINDO_CACHE_STALE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			stale = d
		}
	}

	return &Config{
		StoreDriver:      driver,
		StorePath:        path,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIBaseURL:       os.Getenv("REMINDO_API_URL"), // empty means the public demo API
		UserID:           1,
		RequireRemoteAdd: os.Getenv("REMINDO_REQUIRE_REMOTE_ADD") == "true",
		CacheStale:       stale,
	}
}
