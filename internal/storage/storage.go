package storage

import (
	"context"
	"time"

	"github.com/aeon-neo/vocal-ai-sub001/pkg/types"
)

// Storage defines the interface for persisting and querying chunked documents
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, path string) (*Document, error)
	GetDocumentByID(ctx context.Context, docID int64) (*Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	DeleteDocument(ctx context.Context, docID int64) error
	ListDocuments(ctx context.Context) ([]*Document, error)

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	ListChunksByDocument(ctx context.Context, docID int64) ([]*Chunk, error)
	DeleteChunksByDocument(ctx context.Context, docID int64) error

	// Status operations
	GetStatus(ctx context.Context) (*StoreStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Document represents a chunked source document
type Document struct {
	ID             int64
	Path           string
	ContentHash    [32]byte
	SizeBytes      int64
	ModTime        time.Time
	TokenBudget    int // Budget the stored chunks were produced with
	ChunkCount     int
	LastIngestedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Chunk represents one stored chunk of a document, ordered by Seq
type Chunk struct {
	ID          int64
	DocumentID  int64
	Seq         int
	Content     string
	ContentHash [32]byte
	TokenCount  int
	OverBudget  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreStatus contains statistics about the chunk store
type StoreStatus struct {
	DocumentsCount   int
	ChunksCount      int
	OverBudgetChunks int
}

// ToTypesChunk converts storage Chunk to types.Chunk
func (c *Chunk) ToTypesChunk() types.Chunk {
	return types.Chunk{
		ID:          c.ID,
		DocumentID:  c.DocumentID,
		Content:     c.Content,
		ContentHash: c.ContentHash,
		TokenCount:  c.TokenCount,
		Seq:         c.Seq,
		OverBudget:  c.OverBudget,
	}
}

// FromTypesChunk converts types.Chunk to storage Chunk
func FromTypesChunk(c types.Chunk, docID int64) *Chunk {
	return &Chunk{
		DocumentID:  docID,
		Seq:         c.Seq,
		Content:     c.Content,
		ContentHash: c.ContentHash,
		TokenCount:  c.TokenCount,
		OverBudget:  c.OverBudget,
	}
}
