package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"rag-agents/internal/app"
	"rag-agents/internal/document"
	"rag-agents/internal/httputil"
	"rag-agents/internal/llm"
	"rag-agents/internal/prompts"
	"rag-agents/internal/store"
)

type queryRequest struct {
	Question    string   `json:"question" validate:"required,min=3,max=500"`
	DocumentIDs []string `json:"document_ids" validate:"required,min=1,dive,uuid4"`
	Stream      bool     `json:"stream"`
}

type standaloneRequest struct {
	Question string             `json:"question" validate:"required,min=3,max=500"`
	History  []prompts.Exchange `json:"history" validate:"required"`
}

func main() {
	deps, err := app.BuildQuery()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/query", queryHandler(deps))
	r.Post("/api/standalone", standaloneHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("query service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func queryHandler(deps app.QueryDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ctx := r.Context()
		ids := parseDocumentIDs(req.DocumentIDs)
		stored, err := deps.Store.ListPassages(ctx, ids)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load passages", err, http.StatusInternalServerError)
			return
		}
		if len(stored) == 0 {
			httputil.Fail(deps.Log, w, "no passages found for the given documents", store.ErrDocumentNotFound, http.StatusNotFound)
			return
		}
		passages := toDocuments(stored)

		var answer document.Document
		err = llm.StreamingIfAllowed(deps.LLM, deps.Config.Stream, req.Stream, func() error {
			extracts, err := deps.RAG.VerbatimExtracts(ctx, req.Question, passages)
			if err != nil {
				return err
			}
			answer, err = deps.RAG.SummaryAnswer(ctx, req.Question, extracts)
			return err
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"answer": answer.Content,
			"source": answer.Metadata["source"],
			"cached": answer.Metadata["cached"],
		})
	}
}

func standaloneHandler(deps app.QueryDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req standaloneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		standalone, err := deps.RAG.Standalone(r.Context(), req.History, req.Question)
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"question": standalone,
		})
	}
}

func parseDocumentIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func toDocuments(passages []store.Passage) []document.Document {
	docs := make([]document.Document, 0, len(passages))
	for _, p := range passages {
		docs = append(docs, document.New(p.Content, map[string]any{
			"source":      p.Source,
			"document_id": p.DocumentID.String(),
		}))
	}
	return docs
}
