package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" (production database)
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" (required for inter-service communication)
	QueueURL      string `env:"QUEUE_URL"`

	// Response cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"redis"` // "redis" or "noop"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"86400"` // seconds

	// LLM
	LLMProvider          string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API)
	OpenAIKey            string `env:"OPENAI_API_KEY"`
	ChatModel            string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	CompletionModel      string `env:"COMPLETION_MODEL" envDefault:"gpt-3.5-turbo-instruct"`
	MaxTokens            int    `env:"MAX_TOKENS" envDefault:"1024"`
	UseChatForCompletion bool   `env:"USE_CHAT_FOR_COMPLETION" envDefault:"true"`
	Stream               bool   `env:"STREAM" envDefault:"false"` // deployment-wide streaming switch
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
