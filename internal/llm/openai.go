package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"rag-agents/internal/cache"
)

const defaultCacheTTL = 24 * time.Hour

// OpenAIClient calls the OpenAI API, consulting a response cache before
// issuing live requests.
type OpenAIClient struct {
	cfg    Config
	client *openai.Client
	cache  cache.Cache
	log    *slog.Logger

	mu     sync.Mutex
	stream bool
}

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(cfg Config, store cache.Cache, log *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = string(openai.ChatModelGPT4oMini)
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = "gpt-3.5-turbo-instruct"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if store == nil {
		store = cache.NewNoOpCache()
	}
	if log == nil {
		log = slog.Default()
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIClient{
		cfg:    cfg,
		client: &cli,
		cache:  store,
		log:    log,
		stream: cfg.Stream,
	}, nil
}

// SetStream toggles incremental delivery and returns the previous value.
func (c *OpenAIClient) SetStream(stream bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.stream
	c.stream = stream
	return prev
}

// Stream reports whether incremental delivery is enabled.
func (c *OpenAIClient) Stream() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Generate produces a completion for a bare prompt. Depending on
// configuration it goes through the chat API or the legacy completions API.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, maxTokens int) (Response, error) {
	if c == nil || c.client == nil {
		return Response{}, fmt.Errorf("nil openai client")
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if c.cfg.UseChatForCompletion {
		return c.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, maxTokens)
	}
	return c.complete(ctx, prompt, maxTokens)
}

// Chat produces a reply to an ordered chat transcript.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, maxTokens int) (Response, error) {
	if c == nil || c.client == nil {
		return Response{}, fmt.Errorf("nil openai client")
	}
	if len(messages) == 0 {
		return Response{}, fmt.Errorf("openai: empty message list")
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	key := cache.GenerateKey(c.cfg.ChatModel, transcript(messages), maxTokens)
	if cached := c.lookup(ctx, key); cached != nil {
		return *cached, nil
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.cfg.ChatModel),
		Messages:  toChatParams(messages),
		MaxTokens: openai.Int(int64(maxTokens)),
	}

	var resp Response
	var err error
	if c.Stream() {
		resp, err = c.chatStreaming(ctx, params)
	} else {
		resp, err = c.chatOnce(ctx, params)
	}
	if err != nil {
		return Response{}, err
	}
	c.log.Debug("llm response", "model", c.cfg.ChatModel, "message", resp.Message)
	c.save(ctx, key, resp)
	return resp, nil
}

func (c *OpenAIClient) chatOnce(ctx context.Context, params openai.ChatCompletionNewParams) (Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("openai: no choices returned")
	}
	return Response{
		Message: resp.Choices[0].Message.Content,
		Usage:   int(resp.Usage.TotalTokens),
	}, nil
}

func (c *OpenAIClient) chatStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (Response, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var acc openai.ChatCompletionAccumulator
	for stream.Next() {
		acc.AddChunk(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return Response{}, fmt.Errorf("openai chat stream: %w", err)
	}
	if len(acc.Choices) == 0 || acc.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("openai: empty streamed response")
	}
	return Response{
		Message: acc.Choices[0].Message.Content,
		Usage:   int(acc.Usage.TotalTokens),
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, maxTokens int) (Response, error) {
	key := cache.GenerateKey(c.cfg.CompletionModel, prompt, maxTokens)
	if cached := c.lookup(ctx, key); cached != nil {
		return *cached, nil
	}

	c.log.Debug("llm prompt", "model", c.cfg.CompletionModel, "prompt", prompt)
	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.cfg.CompletionModel),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai: no choices returned")
	}
	out := Response{
		Message: resp.Choices[0].Text,
		Usage:   int(resp.Usage.TotalTokens),
	}
	c.save(ctx, key, out)
	return out, nil
}

// lookup returns a cached response or nil on miss. Cache failures are
// logged and treated as misses.
func (c *OpenAIClient) lookup(ctx context.Context, key string) *Response {
	entry, err := c.cache.GetResponse(ctx, key)
	if err != nil {
		c.log.Warn("cache lookup failed", "err", err)
		return nil
	}
	if entry == nil {
		return nil
	}
	c.log.Debug("llm cache hit", "key", key)
	return &Response{Message: entry.Message, Usage: entry.Usage, Cached: true}
}

func (c *OpenAIClient) save(ctx context.Context, key string, resp Response) {
	err := c.cache.SetResponse(ctx, key, &cache.Entry{
		Message: resp.Message,
		Usage:   resp.Usage,
	}, c.cfg.CacheTTL)
	if err != nil {
		c.log.Warn("cache store failed", "err", err)
	}
}

func toChatParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		}
	}
	return out
}

// transcript flattens messages into a stable string for cache keying.
func transcript(messages []Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = string(m.Role) + ": " + m.Content
	}
	return strings.Join(parts, "\n")
}
