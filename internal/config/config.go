package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the messaging core.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string

	// Session / gateway tuning
	HeartbeatWindow   time.Duration // force-disconnect after this much silence
	StoreTimeout      time.Duration // per-call budget for store operations
	ModerationTimeout time.Duration

	// Message constraints
	MaxMessageLength int

	// Unread summary cache
	UnreadCacheTTL time.Duration
}

// Load reads configuration from environment variables. In development it
// loads a .env file if one is present; in production missing required
// variables panic at startup rather than failing later.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		HeartbeatWindow:   getDuration("HEARTBEAT_WINDOW", 60*time.Second),
		StoreTimeout:      getDuration("STORE_TIMEOUT", 5*time.Second),
		ModerationTimeout: getDuration("MODERATION_TIMEOUT", 3*time.Second),
		MaxMessageLength:  getInt("MAX_MESSAGE_LENGTH", 1000),
		UnreadCacheTTL:    getDuration("UNREAD_CACHE_TTL", 30*time.Second),
	}

	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
