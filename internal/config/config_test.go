package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.Chat.SendQueueSize != 64 {
		t.Errorf("Expected default send queue 64, got %d", cfg.Chat.SendQueueSize)
	}
	if cfg.Chat.PingInterval != 30*time.Second {
		t.Errorf("Expected default ping interval 30s, got %s", cfg.Chat.PingInterval)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode with empty FRONTEND_URL")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when JWT_SECRET is empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("CHAT_PING_INTERVAL", "10s")
	t.Setenv("CHAT_SEND_QUEUE_SIZE", "8")
	t.Setenv("FRONTEND_URL", "https://devmatch.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if cfg.Chat.PingInterval != 10*time.Second {
		t.Errorf("Expected ping interval 10s, got %s", cfg.Chat.PingInterval)
	}
	if cfg.Chat.SendQueueSize != 8 {
		t.Errorf("Expected send queue 8, got %d", cfg.Chat.SendQueueSize)
	}
	if cfg.IsDevelopment() {
		t.Error("Expected production mode with non-local FRONTEND_URL")
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CHAT_SEND_QUEUE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chat.SendQueueSize != 64 {
		t.Errorf("Expected fallback 64, got %d", cfg.Chat.SendQueueSize)
	}
}
