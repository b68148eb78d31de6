package llm

import (
	"errors"
	"testing"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "mystery", APIKey: "k", MaxTokens: 1024}, nil, nil)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewRejectsNonPositiveMaxTokens(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
	}{
		{"zero", 0},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Provider: ProviderOpenAI, APIKey: "k", MaxTokens: tt.maxTokens}, nil, nil)
			if err == nil {
				t.Fatal("expected error for non-positive max tokens")
			}
		})
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := New(Config{Provider: ProviderOpenAI, MaxTokens: 1024}, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewOpenAIInitialStreamFlag(t *testing.T) {
	c, err := New(Config{Provider: ProviderOpenAI, APIKey: "k", MaxTokens: 1024, Stream: true}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Stream() {
		t.Error("expected initial stream flag from config")
	}
	if prev := c.SetStream(false); !prev {
		t.Error("expected SetStream to return previous value true")
	}
	if c.Stream() {
		t.Error("expected stream flag off after SetStream(false)")
	}
}

func TestMessageString(t *testing.T) {
	m := Message{Role: RoleUser, Name: "alice", Content: "hi"}
	if got, want := m.String(), "user (alice): hi"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
