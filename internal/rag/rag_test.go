package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rag-agents/internal/document"
	"rag-agents/internal/llm"
	"rag-agents/internal/prompts"
)

func newTestEngine(c llm.Client) *Engine {
	return New(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func promptContaining(substr string) any {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, substr)
	})
}

func TestVerbatimExtractsOrderAndMetadata(t *testing.T) {
	passages := []document.Document{
		document.New("the first passage", map[string]any{"source": "Doc1", "page": 1}),
		document.New("the second passage", map[string]any{"source": "Doc2", "page": 7}),
		document.New("the third passage", map[string]any{"source": "Doc3"}),
	}

	c := &llm.MockClient{}
	for i, p := range passages {
		c.On("Generate", mock.Anything, promptContaining(p.Content), 1024).
			Return(llm.Response{Message: "fact-" + string(rune('1'+i)) + "\n"}, nil).Once()
	}

	eng := newTestEngine(c)
	docs, err := eng.VerbatimExtracts(context.Background(), "What happened?", passages)
	require.NoError(t, err)
	require.Len(t, docs, len(passages))

	for i, d := range docs {
		want := "fact-" + string(rune('1'+i))
		if d.Content != want {
			t.Errorf("extract %d: expected content %q, got %q", i, want, d.Content)
		}
		require.Equal(t, passages[i].Metadata, d.Metadata, "extract %d metadata", i)
	}
	c.AssertExpectations(t)
}

func TestVerbatimExtractsFailureFailsBatch(t *testing.T) {
	passages := []document.Document{
		document.New("good passage one", map[string]any{"source": "Doc1"}),
		document.New("bad passage", map[string]any{"source": "Doc2"}),
		document.New("good passage two", map[string]any{"source": "Doc3"}),
	}

	boom := errors.New("rate limited")
	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, promptContaining("bad passage"), 1024).
		Return(llm.Response{}, boom)
	c.On("Generate", mock.Anything, mock.Anything, 1024).
		Return(llm.Response{Message: "fine"}, nil).Maybe()

	eng := newTestEngine(c)
	docs, err := eng.VerbatimExtracts(context.Background(), "What happened?", passages)
	require.ErrorIs(t, err, boom)
	require.Nil(t, docs, "a failed batch must produce no documents")
}

func TestVerbatimExtractsEmptyInput(t *testing.T) {
	c := &llm.MockClient{}
	eng := newTestEngine(c)

	docs, err := eng.VerbatimExtracts(context.Background(), "anything", nil)
	require.NoError(t, err)
	require.Empty(t, docs)
	c.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummaryAnswerSplitsCitation(t *testing.T) {
	passages := []document.Document{
		document.New("Go was released in 2009.", map[string]any{"source": "Doc1"}),
		document.New("Go has goroutines.", map[string]any{"source": "Doc2"}),
	}

	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, promptContaining("Question:When was Go released?"), 1024).
		Return(llm.Response{Message: "  Go was released in 2009.\nSOURCE: Doc1, Doc2\n"}, nil).Once()

	eng := newTestEngine(c)
	answer, err := eng.SummaryAnswer(context.Background(), "When was Go released?", passages)
	require.NoError(t, err)

	require.Equal(t, "Go was released in 2009.", answer.Content)
	require.Equal(t, "SOURCE: Doc1, Doc2", answer.Metadata["source"])
	require.Equal(t, false, answer.Metadata["cached"])
	c.AssertExpectations(t)
}

func TestSummaryAnswerWithoutMarker(t *testing.T) {
	passages := []document.Document{
		document.New("irrelevant text", map[string]any{"source": "Doc1"}),
	}

	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, mock.Anything, 1024).
		Return(llm.Response{Message: "I don't know.\n"}, nil).Once()

	eng := newTestEngine(c)
	answer, err := eng.SummaryAnswer(context.Background(), "When was Go released?", passages)
	require.NoError(t, err)

	require.Equal(t, "I don't know.", answer.Content)
	// The prefix is kept even with an empty citation; downstream consumers
	// rely on the exact "SOURCE: " value.
	require.Equal(t, "SOURCE: ", answer.Metadata["source"])
}

func TestSummaryAnswerPropagatesCachedFlag(t *testing.T) {
	passages := []document.Document{
		document.New("Go has goroutines.", map[string]any{"source": "Doc2"}),
	}

	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, mock.Anything, 1024).
		Return(llm.Response{Message: "Goroutines.\nSOURCE: Doc2", Cached: true}, nil).Once()

	eng := newTestEngine(c)
	answer, err := eng.SummaryAnswer(context.Background(), "What does Go have?", passages)
	require.NoError(t, err)
	require.Equal(t, true, answer.Metadata["cached"])
}

func TestSummaryAnswerMissingSourceMetadata(t *testing.T) {
	passages := []document.Document{
		document.New("text without attribution", map[string]any{"page": 3}),
	}

	c := &llm.MockClient{}
	eng := newTestEngine(c)

	_, err := eng.SummaryAnswer(context.Background(), "anything", passages)
	require.ErrorIs(t, err, document.ErrMissingSource)
	c.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummaryAnswerPromptIncludesExtracts(t *testing.T) {
	passages := []document.Document{
		document.New("first snippet", map[string]any{"source": "Doc1"}),
		document.New("second snippet", map[string]any{"source": "Doc2"}),
	}

	var captured string
	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		captured = prompt
		return true
	}), 1024).Return(llm.Response{Message: "ok\nSOURCE: Doc1"}, nil).Once()

	eng := newTestEngine(c)
	_, err := eng.SummaryAnswer(context.Background(), "q", passages)
	require.NoError(t, err)

	require.Contains(t, captured, "Extract: first snippet\nSource: Doc1")
	require.Contains(t, captured, "Extract: second snippet\nSource: Doc2")
}

func TestStandalone(t *testing.T) {
	history := []prompts.Exchange{
		{Question: "Who created Go?", Answer: "Google engineers."},
		{Question: "When?", Answer: "2009."},
	}

	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "User: Who created Go?") &&
			strings.Contains(prompt, "Follow-up question: Why there?")
	}), 1024).Return(llm.Response{Message: "  Why was Go created at Google?  "}, nil).Once()

	eng := newTestEngine(c)
	standalone, err := eng.Standalone(context.Background(), history, "Why there?")
	require.NoError(t, err)
	require.Equal(t, "Why was Go created at Google?", standalone)
	c.AssertExpectations(t)
}

func TestStandalonePropagatesProviderError(t *testing.T) {
	boom := errors.New("connection reset")
	c := &llm.MockClient{}
	c.On("Generate", mock.Anything, mock.Anything, 1024).Return(llm.Response{}, boom).Once()

	eng := newTestEngine(c)
	_, err := eng.Standalone(context.Background(), nil, "question")
	require.ErrorIs(t, err, boom)
}
