package llm

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
// The streaming flag is backed by a real field so scope helpers behave
// the same as against a concrete client.
type MockClient struct {
	mock.Mock

	mu     sync.Mutex
	stream bool
}

func (m *MockClient) Generate(ctx context.Context, prompt string, maxTokens int) (Response, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.Get(0).(Response), args.Error(1)
}

func (m *MockClient) Chat(ctx context.Context, messages []Message, maxTokens int) (Response, error) {
	args := m.Called(ctx, messages, maxTokens)
	return args.Get(0).(Response), args.Error(1)
}

func (m *MockClient) SetStream(stream bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.stream
	m.stream = stream
	return prev
}

func (m *MockClient) Stream() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream
}
