// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	Chat        ChatConfig
}

// ChatConfig controls the real-time chat layer.
type ChatConfig struct {
	// SendQueueSize is the per-session outbound buffer. A session whose
	// buffer is full has individual deliveries skipped rather than
	// blocking the dispatcher.
	SendQueueSize int
	// PingInterval is how often the server probes a connection for
	// liveness; a failed probe triggers the disconnect path.
	PingInterval time.Duration
	// HistoryPageSize is the default page size for the message history
	// endpoints.
	HistoryPageSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/devmatch.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 24*time.Hour),
		Chat: ChatConfig{
			SendQueueSize:   getEnvInt("CHAT_SEND_QUEUE_SIZE", 64),
			PingInterval:    getEnvDuration("CHAT_PING_INTERVAL", 30*time.Second),
			HistoryPageSize: getEnvInt("CHAT_HISTORY_PAGE_SIZE", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be > 0")
	}
	if c.Chat.SendQueueSize <= 0 {
		return fmt.Errorf("CHAT_SEND_QUEUE_SIZE must be > 0")
	}
	if c.Chat.PingInterval <= 0 {
		return fmt.Errorf("CHAT_PING_INTERVAL must be > 0")
	}
	if c.Chat.HistoryPageSize <= 0 {
		return fmt.Errorf("CHAT_HISTORY_PAGE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
