package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeon-neo/vocal-ai-sub001/internal/splitter"
	"github.com/aeon-neo/vocal-ai-sub001/internal/storage"
)

// DefaultMaxTokens is the chunk token budget used when none is configured
const DefaultMaxTokens = 512

// Ingestor coordinates the ingestion pipeline: read -> chunk -> store
type Ingestor struct {
	counter splitter.TokenCounter
	storage storage.Storage

	// Worker pool configuration
	workers int
}

// Config contains configuration for one ingestion run
type Config struct {
	MaxTokens int  // Token budget per chunk (default: DefaultMaxTokens)
	Workers   int  // Concurrent documents (default: runtime.NumCPU())
	Force     bool // Re-ingest even when the content hash is unchanged
}

// Result describes the outcome of ingesting a single document
type Result struct {
	Document      *storage.Document
	Skipped       bool // Content hash unchanged, nothing rewritten
	ChunksCreated int
	OverBudget    int
}

// Stats contains statistics about a batch ingestion run
type Stats struct {
	DocumentsIngested int
	DocumentsSkipped  int
	DocumentsFailed   int
	ChunksCreated     int
	OverBudgetChunks  int
	Duration          time.Duration
	ErrorMessages     []string
}

// New creates a new Ingestor instance
func New(store storage.Storage, counter splitter.TokenCounter) *Ingestor {
	return &Ingestor{
		counter: counter,
		storage: store,
		workers: runtime.NumCPU(),
	}
}

func (cfg *Config) withDefaults() Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU()
	}
	return out
}

// IngestFile chunks a single file and persists the result atomically. An
// unchanged file (same content hash and budget) is skipped unless Force is
// set.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, cfg *Config) (*Result, error) {
	conf := cfg.withDefaults()

	path = filepath.Clean(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	hash := sha256.Sum256(content)

	// Incremental skip: same content chunked under the same budget
	existing, err := ing.storage.GetDocument(ctx, path)
	if err != nil && err != storage.ErrNotFound {
		return nil, err
	}
	if existing != nil && !conf.Force &&
		existing.ContentHash == hash && existing.TokenBudget == conf.MaxTokens {
		return &Result{Document: existing, Skipped: true}, nil
	}

	// Chunk before touching the database; a counter failure must leave the
	// stored state untouched.
	s, err := splitter.New(conf.MaxTokens, ing.counter)
	if err != nil {
		return nil, err
	}
	split, err := s.Split(ctx, string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	tx, err := ing.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	doc := existing
	if doc == nil {
		doc = &storage.Document{
			Path:        path,
			ContentHash: hash,
			SizeBytes:   info.Size(),
			ModTime:     info.ModTime(),
			TokenBudget: conf.MaxTokens,
		}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return nil, err
		}
	} else {
		// Replace stale chunks wholesale; a shorter re-chunk must not leave
		// orphan rows at higher sequence numbers.
		if err := tx.DeleteChunksByDocument(ctx, doc.ID); err != nil {
			return nil, err
		}
	}

	for _, chunk := range split.Chunks {
		if err := tx.UpsertChunk(ctx, storage.FromTypesChunk(chunk, doc.ID)); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d: %w", chunk.Seq, err)
		}
	}

	doc.ContentHash = hash
	doc.SizeBytes = info.Size()
	doc.ModTime = info.ModTime()
	doc.TokenBudget = conf.MaxTokens
	doc.ChunkCount = len(split.Chunks)
	doc.LastIngestedAt = time.Now()
	if err := tx.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &Result{
		Document:      doc,
		ChunksCreated: len(split.Chunks),
		OverBudget:    split.OverBudget,
	}, nil
}

// IngestFiles ingests many files concurrently. Documents are independent, so
// they may be chunked in parallel; within each document the counter is still
// queried strictly sequentially and chunk order is preserved.
func (ing *Ingestor) IngestFiles(ctx context.Context, paths []string, cfg *Config) (*Stats, error) {
	conf := cfg.withDefaults()
	ing.workers = conf.Workers

	startTime := time.Now()
	stats := &Stats{
		ErrorMessages: make([]string, 0),
	}

	var (
		ingested   int32
		skipped    int32
		failed     int32
		chunks     int32
		overBudget int32
	)

	semaphore := make(chan struct{}, ing.workers)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for _, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire semaphore
			}
			defer func() { <-semaphore }()

			result, err := ing.IngestFile(gctx, path, &conf)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				// Continue with other files
				return nil
			}

			if result.Skipped {
				atomic.AddInt32(&skipped, 1)
				return nil
			}
			atomic.AddInt32(&ingested, 1)
			atomic.AddInt32(&chunks, int32(result.ChunksCreated))
			atomic.AddInt32(&overBudget, int32(result.OverBudget))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.DocumentsIngested = int(ingested)
	stats.DocumentsSkipped = int(skipped)
	stats.DocumentsFailed = int(failed)
	stats.ChunksCreated = int(chunks)
	stats.OverBudgetChunks = int(overBudget)
	stats.Duration = time.Since(startTime)

	return stats, nil
}
