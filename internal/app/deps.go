package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"rag-agents/internal/cache"
	"rag-agents/internal/config"
	"rag-agents/internal/llm"
	"rag-agents/internal/logger"
	"rag-agents/internal/queue"
	"rag-agents/internal/rag"
	"rag-agents/internal/store"
)

// Deps bundles common runtime dependencies for the ingestion services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
}

// QueryDeps bundles dependencies for the query service, which talks to the
// model instead of the queue.
type QueryDeps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Cache  cache.Cache
	LLM    llm.Client
	RAG    *rag.Engine
}

// Build loads env, config, and the components shared by gateway and parser.
func Build() (Deps, error) {
	cfg, log := loadConfig()

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Queue:  q,
	}, nil
}

// BuildQuery loads env, config, and the query-service components.
func BuildQuery() (QueryDeps, error) {
	cfg, log := loadConfig()

	st, err := buildStore(cfg, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	respCache, err := buildCache(cfg, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	llmClient, err := buildLLM(cfg, respCache, log)
	if err != nil {
		return QueryDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return QueryDeps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Cache:  respCache,
		LLM:    llmClient,
		RAG:    rag.New(llmClient, log),
	}, nil
}

func loadConfig() (config.Config, *slog.Logger) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis response cache", "addr", cfg.RedisAddr)
		return c, nil
	case "noop":
		log.Info("response caching disabled")
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, noop)", cfg.CacheProvider)
	}
}

func buildLLM(cfg config.Config, respCache cache.Cache, log *slog.Logger) (llm.Client, error) {
	if cfg.LLMProvider == llm.ProviderOpenAI && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	client, err := llm.New(llm.Config{
		Provider:             cfg.LLMProvider,
		APIKey:               cfg.OpenAIKey,
		ChatModel:            cfg.ChatModel,
		CompletionModel:      cfg.CompletionModel,
		MaxTokens:            cfg.MaxTokens,
		UseChatForCompletion: cfg.UseChatForCompletion,
		Stream:               cfg.Stream,
		CacheTTL:             time.Duration(cfg.CacheTTL) * time.Second,
	}, respCache, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	log.Info("using LLM client", "provider", cfg.LLMProvider, "chat_model", cfg.ChatModel)
	return client, nil
}
