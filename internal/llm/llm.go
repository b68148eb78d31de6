package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rag-agents/internal/cache"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn. Immutable value.
type Message struct {
	Role    Role
	Name    string
	Content string
}

func (m Message) String() string {
	return fmt.Sprintf("%s (%s): %s", m.Role, m.Name, m.Content)
}

// Response is a model's reply. Cached reports whether the backing cache
// served the result instead of a live API call.
type Response struct {
	Message string
	Usage   int
	Cached  bool
}

// Config selects and tunes a concrete provider.
type Config struct {
	Provider             string
	APIKey               string
	ChatModel            string
	CompletionModel      string
	MaxTokens            int // default token budget, must be positive
	UseChatForCompletion bool
	Stream               bool // initial streaming flag
	CacheTTL             time.Duration
}

// ErrUnknownProvider is returned by New for an unrecognized provider tag.
var ErrUnknownProvider = errors.New("unknown llm provider")

// ProviderOpenAI is the provider tag for the OpenAI-backed client.
const ProviderOpenAI = "openai"

// Client is the capability set every language-model backend must support.
// Generate and Chat are synchronous; both are safe for concurrent use from
// multiple goroutines, which is how callers fan out parallel requests.
// SetStream toggles incremental delivery for subsequent calls and returns
// the previous value.
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (Response, error)
	Chat(ctx context.Context, messages []Message, maxTokens int) (Response, error)
	SetStream(stream bool) bool
	Stream() bool
}

// New selects a concrete client by the provider tag in the configuration.
// An unrecognized tag is a configuration error, not a fallback.
func New(cfg Config, store cache.Cache, log *slog.Logger) (Client, error) {
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("llm: max tokens must be positive, got %d", cfg.MaxTokens)
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, store, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
