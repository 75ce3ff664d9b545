package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the remote advisory API origin.
const DefaultAPIBaseURL = "https://adl-api-ten.vercel.app"

// Session store backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// APIBaseURL is the single origin for every API call and attachment link.
	APIBaseURL string
	// HTTPTimeout of zero leaves requests unbounded.
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string

	SessionStore string
	SessionFile  string
	RedisURL     string

	ServerPort     string
	GinMode        string
	ClockInterval  time.Duration
	AuthRateLimit  int
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		SessionStore:   getEnv("SESSION_STORE", SessionStoreFile),
		SessionFile:    getEnv("SESSION_FILE", defaultSessionFile()),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		ClockInterval:  time.Duration(getEnvInt("CLOCK_INTERVAL_MS", 1000)) * time.Millisecond,
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// defaultSessionFile places the session file under the user config dir,
// falling back to the working directory when none is available.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "portal-session.json"
	}
	return filepath.Join(dir, "elite-advisers", "session.json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
