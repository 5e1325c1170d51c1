package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSupabase is returned when the backing-store connection settings
// are absent. Fatal at startup; no request can be served without them.
var ErrMissingSupabase = errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Backing store (PostgREST)
	SupabaseURL string
	SupabaseKey string

	// Per-source fetch timeout inside a federated query.
	SourceTimeout time.Duration

	// Scraper control service the /api/scraper/* proxy forwards to.
	DropletAPIURL string

	// Optional shared cache backend. Empty means in-process.
	CacheRedisURL string

	// CORS
	CORSOrigins string // Comma-separated allowed origins; "*" in dev

	// Background source monitor
	MonitorInterval time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. In development a .env file is loaded first, matching how the
// scrapers configure themselves.
func Load() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		ServerAddr:      getEnv("SERVER_ADDR", ":5000"),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SourceTimeout:   getDuration("SOURCE_TIMEOUT", 10*time.Second),
		DropletAPIURL:   getEnv("DROPLET_API_URL", ""),
		CacheRedisURL:   getEnv("CACHE_REDIS_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		MonitorInterval: getDuration("MONITOR_INTERVAL", 10*time.Minute),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, ErrMissingSupabase
	}
	return cfg, nil
}

// LoadDotenv pulls a local .env file into the environment when present.
// Call before Load in main; missing files are fine.
func LoadDotenv() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
