package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeon-neo/vocal-ai-sub001/internal/splitter"
	"github.com/aeon-neo/vocal-ai-sub001/internal/storage"
)

func wordCounter() splitter.TokenCounter {
	return splitter.TokenCounterFunc(func(_ context.Context, text string) (int, error) {
		return len(strings.Fields(text)), nil
	})
}

func testIngestor(t *testing.T) (*Ingestor, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, wordCounter()), store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestFile(t *testing.T) {
	ing, store := testIngestor(t)
	ctx := context.Background()
	dir := t.TempDir()

	content := "First sentence here. Second sentence there.\n\nAnother paragraph entirely."
	path := writeFile(t, dir, "doc.txt", content)

	result, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 4})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Greater(t, result.ChunksCreated, 1)
	assert.Zero(t, result.OverBudget)

	doc, err := store.GetDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, result.ChunksCreated, doc.ChunkCount)
	assert.Equal(t, 4, doc.TokenBudget)
	assert.False(t, doc.LastIngestedAt.IsZero())

	chunks, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, result.ChunksCreated)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.NotEmpty(t, chunk.Content)
		assert.LessOrEqual(t, chunk.TokenCount, 4)
	}
}

func TestIngestFile_SkipsUnchanged(t *testing.T) {
	ing, _ := testIngestor(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "doc.txt", "Stable content here.")

	first, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 10})
	require.NoError(t, err)
	assert.False(t, first.Skipped)

	second, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 10})
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.ChunksCreated)

	// Force overrides the skip
	third, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 10, Force: true})
	require.NoError(t, err)
	assert.False(t, third.Skipped)
}

func TestIngestFile_BudgetChangeRechunks(t *testing.T) {
	ing, store := testIngestor(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "doc.txt", "One two three four. Five six seven eight.")

	_, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 100})
	require.NoError(t, err)

	// Same content, smaller budget: must not be skipped
	result, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 4})
	require.NoError(t, err)
	assert.False(t, result.Skipped)

	doc, err := store.GetDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.TokenBudget)
}

func TestIngestFile_ChangedContentReplacesChunks(t *testing.T) {
	ing, store := testIngestor(t)
	ctx := context.Background()
	dir := t.TempDir()

	long := "One two three four. Five six seven eight. Nine ten eleven twelve."
	path := writeFile(t, dir, "doc.txt", long)

	first, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 4})
	require.NoError(t, err)
	assert.Greater(t, first.ChunksCreated, 1)

	// Shrink the file: stale high-seq chunks must not survive
	writeFile(t, dir, "doc.txt", "Tiny now.")
	second, err := ing.IngestFile(ctx, path, &Config{MaxTokens: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, second.ChunksCreated)

	doc, err := store.GetDocument(ctx, path)
	require.NoError(t, err)
	chunks, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Tiny now.", chunks[0].Content)
}

func TestIngestFile_MissingFile(t *testing.T) {
	ing, _ := testIngestor(t)

	_, err := ing.IngestFile(context.Background(), "/no/such/file.txt", nil)
	assert.Error(t, err)
}

func TestIngestFiles(t *testing.T) {
	ing, store := testIngestor(t)
	ctx := context.Background()
	dir := t.TempDir()

	paths := []string{
		writeFile(t, dir, "a.txt", "Alpha beta gamma delta. Epsilon zeta."),
		writeFile(t, dir, "b.txt", "Eta theta iota kappa lambda mu nu."),
		writeFile(t, dir, "c.txt", "Xi omicron pi."),
		filepath.Join(dir, "missing.txt"),
	}

	stats, err := ing.IngestFiles(ctx, paths, &Config{MaxTokens: 4, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.DocumentsIngested)
	assert.Equal(t, 1, stats.DocumentsFailed)
	assert.Zero(t, stats.DocumentsSkipped)
	assert.Greater(t, stats.ChunksCreated, 3)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "missing.txt")

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.DocumentsCount)
	assert.Equal(t, stats.ChunksCreated, status.ChunksCount)

	// Second pass skips everything that succeeded
	stats, err = ing.IngestFiles(ctx, paths, &Config{MaxTokens: 4, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DocumentsSkipped)
	assert.Zero(t, stats.DocumentsIngested)
}
