package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"rag-agents/internal/app"
	"rag-agents/internal/httputil"
	"rag-agents/internal/queue"
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
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents/upload", uploadHandler(deps))
	r.Get("/api/documents/{id}", statusHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, deps.Config.MaxUploadSize)
		if err := r.ParseMultipartForm(deps.Config.MaxUploadSize); err != nil {
			httputil.Fail(deps.Log, w, "upload too large or malformed", err, http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "missing file field", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read upload", err, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		doc, err := deps.Store.CreateDocument(ctx, header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create document", err, http.StatusInternalServerError)
			return
		}

		text := extractText(deps.Log, header.Filename, content)
		payload, err := json.Marshal(parseTaskPayload{
			DocumentID: doc.ID,
			Filename:   header.Filename,
			Content:    text,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to encode task", err, http.StatusInternalServerError)
			return
		}

		task := queue.Task{Type: queue.TaskTypeParse, Payload: payload, NotBefore: time.Now()}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			if statusErr := deps.Store.UpdateDocumentStatus(ctx, doc.ID, store.StatusFailed); statusErr != nil {
				deps.Log.Warn("failed to mark document failed", "id", doc.ID, "err", statusErr)
			}
			httputil.Fail(deps.Log, w, "failed to enqueue parse task", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID,
			"status":      doc.Status,
		})
	}
}

func statusHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), id)
		if err != nil {
			status := http.StatusInternalServerError
			if err == store.ErrDocumentNotFound {
				status = http.StatusNotFound
			}
			httputil.Fail(deps.Log, w, "failed to fetch document", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": doc.ID,
			"filename":    doc.Filename,
			"status":      doc.Status,
			"created_at":  doc.CreatedAt,
		})
	}
}

// extractText extracts text from uploaded files, with PDF support.
func extractText(log *slog.Logger, filename string, content []byte) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		text, err := extractPDF(content)
		if err != nil {
			log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	// Treat other files as plain text
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
