package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			// Parse and restore each env var
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	// Clear env to test defaults
	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"QueueProvider", cfg.QueueProvider, "nats"},
		{"CacheProvider", cfg.CacheProvider, "redis"},
		{"ChatModel", cfg.ChatModel, "gpt-4o-mini"},
		{"CompletionModel", cfg.CompletionModel, "gpt-3.5-turbo-instruct"},
		{"MaxTokens", cfg.MaxTokens, 1024},
		{"UseChatForCompletion", cfg.UseChatForCompletion, true},
		{"Stream", cfg.Stream, false},
		{"CacheTTL", cfg.CacheTTL, 86400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Save and restore env
	originalPort := os.Getenv("PORT")
	originalStream := os.Getenv("STREAM")
	defer func() {
		os.Setenv("PORT", originalPort)
		os.Setenv("STREAM", originalStream)
	}()

	// Set test values
	os.Setenv("PORT", "9090")
	os.Setenv("STREAM", "true")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if !cfg.Stream {
		t.Error("expected streaming enabled")
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	// Save and restore env
	originalCache := os.Getenv("CACHE_PROVIDER")
	defer func() {
		os.Setenv("CACHE_PROVIDER", originalCache)
	}()

	// Set test values
	os.Setenv("CACHE_PROVIDER", "noop")

	cfg := Load()

	if cfg.CacheProvider != "noop" {
		t.Errorf("expected cache provider 'noop', got %s", cfg.CacheProvider)
	}
}
