package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 424242421 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	// Ensure lock is released when done
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			filename TEXT,
			status TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS passages (
			id UUID PRIMARY KEY,
			document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
			ord INT,
			content TEXT,
			source TEXT,
			word_count INT
		);`,
		`CREATE INDEX IF NOT EXISTS passages_document_id_idx ON passages (document_id, ord);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, filename string) (Document, error) {
	doc := Document{
		ID:       uuid.New(),
		Filename: filename,
		Status:   StatusProcessing,
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO documents (id, filename, status) VALUES ($1, $2, $3) RETURNING created_at`,
		doc.ID, doc.Filename, doc.Status,
	)
	if err := row.Scan(&doc.CreatedAt); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var doc Document
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, status, created_at FROM documents WHERE id = $1`, id)
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.Status, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) SavePassages(ctx context.Context, docID uuid.UUID, passages []Passage) ([]Passage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save passages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	saved := make([]Passage, 0, len(passages))
	for _, p := range passages {
		p.ID = uuid.New()
		p.DocumentID = docID
		_, err := tx.ExecContext(ctx,
			`INSERT INTO passages (id, document_id, ord, content, source, word_count)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.DocumentID, p.Index, p.Content, p.Source, p.WordCount,
		)
		if err != nil {
			return nil, fmt.Errorf("save passage %d: %w", p.Index, err)
		}
		saved = append(saved, p)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save passages: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) ListPassages(ctx context.Context, docIDs []uuid.UUID) ([]Passage, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}

	// database/sql has no slice binding; build the placeholder list by hand.
	placeholders := make([]string, len(docIDs))
	args := make([]any, len(docIDs))
	for i, id := range docIDs {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, document_id, ord, content, source, word_count
		 FROM passages WHERE document_id IN (%s)
		 ORDER BY document_id, ord`,
		strings.Join(placeholders, ","),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Index, &p.Content, &p.Source, &p.WordCount); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	return passages, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
