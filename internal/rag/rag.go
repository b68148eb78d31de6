// Package rag implements the retrieval-augmented operations on top of a
// language-model client: rewriting follow-up questions, extracting verbatim
// passage snippets concurrently, and composing a cited summary answer.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"rag-agents/internal/document"
	"rag-agents/internal/llm"
	"rag-agents/internal/prompts"
)

// Token budget for the derived operations.
const opMaxTokens = 1024

// Citation marker splitting a model's free-text response into answer and
// source-attribution segments.
const sourceMarker = "SOURCE:"

// Engine runs the retrieval-augmented operations. It holds no state beyond
// its collaborators and is safe for concurrent use.
type Engine struct {
	llm llm.Client
	log *slog.Logger
}

func New(client llm.Client, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{llm: client, log: log}
}

// Standalone rewrites a follow-up question as a standalone question, given
// the question/answer history of the conversation so far (oldest first).
func (e *Engine) Standalone(ctx context.Context, history []prompts.Exchange, question string) (string, error) {
	prompt := prompts.Standalone(prompts.CollateHistory(history), question)
	e.log.Debug("standalone prompt", "prompt", prompt)

	resp, err := e.llm.Generate(ctx, prompt, opMaxTokens)
	if err != nil {
		return "", fmt.Errorf("standalone rewrite: %w", err)
	}
	standalone := strings.TrimSpace(resp.Message)
	e.log.Debug("standalone response", "question", standalone)
	return standalone, nil
}

// VerbatimExtracts asks the model, once per passage and concurrently, for
// the verbatim text relevant to the question. Results preserve the input
// order and each carries its passage's metadata unchanged. The call joins
// all branches; if any branch fails, the whole operation fails and no
// documents are returned.
func (e *Engine) VerbatimExtracts(ctx context.Context, question string, passages []document.Document) ([]document.Document, error) {
	extracts := make([]document.Document, len(passages))

	g, ctx := errgroup.WithContext(ctx)
	for i, passage := range passages {
		g.Go(func() error {
			prompt := prompts.Extraction(question, passage.Content)
			e.log.Debug("extraction prompt", "index", i, "prompt", prompt)

			resp, err := e.llm.Generate(ctx, prompt, opMaxTokens)
			if err != nil {
				return fmt.Errorf("extract passage %d: %w", i, err)
			}
			extracts[i] = passage.WithContent(strings.TrimSpace(resp.Message))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return extracts, nil
}

// SummaryAnswer composes a single cited answer from the question and the
// given passages. Each passage must carry "source" metadata. The model's
// reply is split on the first "SOURCE:" marker; the part before it becomes
// the answer body and the part after it the citation. The returned
// document's source metadata always starts with the "SOURCE: " prefix, even
// when the model cited nothing.
func (e *Engine) SummaryAnswer(ctx context.Context, question string, passages []document.Document) (document.Document, error) {
	extracts, err := stringifyPassages(passages)
	if err != nil {
		return document.Document{}, err
	}
	prompt := prompts.Summary(question, extracts)
	e.log.Debug("summary prompt", "prompt", prompt)

	resp, err := e.llm.Generate(ctx, prompt, opMaxTokens)
	if err != nil {
		return document.Document{}, fmt.Errorf("summary answer: %w", err)
	}
	answer := strings.TrimSpace(resp.Message)
	e.log.Debug("summary response", "answer", answer)

	content, citation := splitCitation(answer)
	return document.Document{
		Content: content,
		Metadata: map[string]any{
			"source": sourceMarker + " " + citation,
			"cached": resp.Cached,
		},
	}, nil
}

// stringifyPassages renders passages into the extract/source block the
// summary prompt expects.
func stringifyPassages(passages []document.Document) (string, error) {
	lines := make([]string, 0, len(passages))
	for i, p := range passages {
		src, err := p.Source()
		if err != nil {
			return "", fmt.Errorf("passage %d: %w", i, err)
		}
		lines = append(lines, fmt.Sprintf("Extract: %s\nSource: %s", p.Content, src))
	}
	return strings.Join(lines, "\n"), nil
}

// splitCitation separates the answer body from the citation text on the
// first occurrence of the marker. Without a marker the citation is empty.
func splitCitation(answer string) (content, citation string) {
	parts := strings.SplitN(answer, sourceMarker, 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return answer, ""
}
