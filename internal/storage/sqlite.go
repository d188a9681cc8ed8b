package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) Close() error {
	return nil // The underlying connection belongs to the storage
}

func (t *sqliteTx) BeginTx(_ context.Context) (Tx, error) {
	return nil, errors.New("nested transactions are not supported")
}

// Document operations

func (s *SQLiteStorage) createDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	query := `
		INSERT INTO documents (path, content_hash, size_bytes, mod_time, token_budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		doc.Path, doc.ContentHash[:], doc.SizeBytes, doc.ModTime, doc.TokenBudget, now, now)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *Document) error {
	return s.createDocumentWithQuerier(ctx, s.db, doc)
}

func (t *sqliteTx) CreateDocument(ctx context.Context, doc *Document) error {
	return t.storage.createDocumentWithQuerier(ctx, t.tx, doc)
}

const documentColumns = `id, path, content_hash, size_bytes, mod_time, token_budget,
	       chunk_count, last_ingested_at, created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*Document, error) {
	var doc Document
	var hash []byte
	var modTime, lastIngestedAt sql.NullTime
	err := row.Scan(
		&doc.ID, &doc.Path, &hash, &doc.SizeBytes, &modTime, &doc.TokenBudget,
		&doc.ChunkCount, &lastIngestedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	if modTime.Valid {
		doc.ModTime = modTime.Time
	}
	if lastIngestedAt.Valid {
		doc.LastIngestedAt = lastIngestedAt.Time
	}
	return &doc, nil
}

func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, path string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE path = ?`
	return scanDocument(q.QueryRowContext(ctx, query, path))
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, path string) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.db, path)
}

func (t *sqliteTx) GetDocument(ctx context.Context, path string) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.tx, path)
}

func (s *SQLiteStorage) getDocumentByIDWithQuerier(ctx context.Context, q querier, docID int64) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	return scanDocument(q.QueryRowContext(ctx, query, docID))
}

func (s *SQLiteStorage) GetDocumentByID(ctx context.Context, docID int64) (*Document, error) {
	return s.getDocumentByIDWithQuerier(ctx, s.db, docID)
}

func (t *sqliteTx) GetDocumentByID(ctx context.Context, docID int64) (*Document, error) {
	return t.storage.getDocumentByIDWithQuerier(ctx, t.tx, docID)
}

func (s *SQLiteStorage) updateDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	query := `
		UPDATE documents
		SET content_hash = ?, size_bytes = ?, mod_time = ?, token_budget = ?,
		    chunk_count = ?, last_ingested_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		doc.ContentHash[:], doc.SizeBytes, doc.ModTime, doc.TokenBudget,
		doc.ChunkCount, doc.LastIngestedAt, now, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *Document) error {
	return s.updateDocumentWithQuerier(ctx, s.db, doc)
}

func (t *sqliteTx) UpdateDocument(ctx context.Context, doc *Document) error {
	return t.storage.updateDocumentWithQuerier(ctx, t.tx, doc)
}

func (s *SQLiteStorage) deleteDocumentWithQuerier(ctx context.Context, q querier, docID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, docID int64) error {
	return s.deleteDocumentWithQuerier(ctx, s.db, docID)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, docID int64) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.tx, docID)
}

func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY path`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.db)
}

func (t *sqliteTx) ListDocuments(ctx context.Context) ([]*Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.tx)
}

// Chunk operations

func (s *SQLiteStorage) upsertChunkWithQuerier(ctx context.Context, q querier, chunk *Chunk) error {
	query := `
		INSERT INTO chunks (document_id, seq, content, content_hash, token_count, over_budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, seq) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			token_count = excluded.token_count,
			over_budget = excluded.over_budget,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		chunk.DocumentID, chunk.Seq, chunk.Content, chunk.ContentHash[:],
		chunk.TokenCount, chunk.OverBudget, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	chunk.ID = id
	chunk.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return s.upsertChunkWithQuerier(ctx, s.db, chunk)
}

func (t *sqliteTx) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return t.storage.upsertChunkWithQuerier(ctx, t.tx, chunk)
}

func (s *SQLiteStorage) listChunksByDocumentWithQuerier(ctx context.Context, q querier, docID int64) ([]*Chunk, error) {
	query := `
		SELECT id, document_id, seq, content, content_hash, token_count, over_budget, created_at, updated_at
		FROM chunks
		WHERE document_id = ?
		ORDER BY seq
	`
	rows, err := q.QueryContext(ctx, query, docID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*Chunk
	for rows.Next() {
		var chunk Chunk
		var hash []byte
		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.Seq, &chunk.Content, &hash,
			&chunk.TokenCount, &chunk.OverBudget, &chunk.CreatedAt, &chunk.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		copy(chunk.ContentHash[:], hash)
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStorage) ListChunksByDocument(ctx context.Context, docID int64) ([]*Chunk, error) {
	return s.listChunksByDocumentWithQuerier(ctx, s.db, docID)
}

func (t *sqliteTx) ListChunksByDocument(ctx context.Context, docID int64) ([]*Chunk, error) {
	return t.storage.listChunksByDocumentWithQuerier(ctx, t.tx, docID)
}

func (s *SQLiteStorage) deleteChunksByDocumentWithQuerier(ctx context.Context, q querier, docID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteChunksByDocument(ctx context.Context, docID int64) error {
	return s.deleteChunksByDocumentWithQuerier(ctx, s.db, docID)
}

func (t *sqliteTx) DeleteChunksByDocument(ctx context.Context, docID int64) error {
	return t.storage.deleteChunksByDocumentWithQuerier(ctx, t.tx, docID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*StoreStatus, error) {
	status := &StoreStatus{}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&status.DocumentsCount); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&status.ChunksCount); err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE over_budget = 1`).Scan(&status.OverBudgetChunks); err != nil {
		return nil, fmt.Errorf("failed to count over-budget chunks: %w", err)
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*StoreStatus, error) {
	return s.getStatusWithQuerier(ctx, s.db)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*StoreStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.tx)
}
