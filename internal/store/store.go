package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is an uploaded source document whose text has been (or is being)
// split into passages.
type Document struct {
	ID        uuid.UUID
	Filename  string
	Status    DocumentStatus
	CreatedAt time.Time
}

// Passage is one retrievable slice of a document's text. Source is the
// attribution label carried into answer citations.
type Passage struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Content    string
	Source     string
	WordCount  int
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateDocument(ctx context.Context, filename string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	SavePassages(ctx context.Context, docID uuid.UUID, passages []Passage) ([]Passage, error)
	ListPassages(ctx context.Context, docIDs []uuid.UUID) ([]Passage, error)
	Close() error
}
