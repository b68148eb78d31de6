package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rag-agents/internal/app"
	"rag-agents/internal/httputil"
	"rag-agents/internal/queue"
	"rag-agents/internal/splitter"
	"rag-agents/internal/store"
)

type parseTaskPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("parser worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeParse, func(ctx context.Context, task queue.Task) error {
			var payload parseTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleParse(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "parser")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("parser service stopped", "err", err)
	}
}

func handleParse(ctx context.Context, deps app.Deps, payload parseTaskPayload) error {
	pieces := splitter.Split(payload.Content, splitter.Options{MaxWords: 400, Overlap: 80})

	passages := make([]store.Passage, 0, len(pieces))
	for _, p := range pieces {
		passages = append(passages, store.Passage{
			Index:     p.Index,
			Content:   p.Content,
			Source:    passageSource(payload.Filename, p.Index),
			WordCount: p.WordCount,
		})
	}

	if _, err := deps.Store.SavePassages(ctx, payload.DocumentID, passages); err != nil {
		if statusErr := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusFailed); statusErr != nil {
			deps.Log.Warn("failed to mark document failed", "id", payload.DocumentID, "err", statusErr)
		}
		return err
	}
	if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady); err != nil {
		return err
	}
	deps.Log.Info("document parsed", "id", payload.DocumentID, "passages", len(passages))
	return nil
}

// passageSource is the attribution label cited in summary answers.
func passageSource(filename string, index int) string {
	return fmt.Sprintf("%s#%d", filename, index+1)
}
