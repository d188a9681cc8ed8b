package tokenizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrProviderFailed      = errors.New("tokenizer provider failed")
	ErrUnsupportedProvider = errors.New("unsupported tokenizer provider")
	ErrNoEndpoint          = errors.New("no tokenizer endpoint configured")
)

// Counter measures the token count of a text. It satisfies
// splitter.TokenCounter and adds provider metadata and lifecycle.
type Counter interface {
	// Count returns the token count for text. Accepts the empty string and
	// returns a non-negative count; deterministic for fixed input.
	Count(ctx context.Context, text string) (int, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model or encoding name counts are computed against
	Model() string

	// Close releases any resources held by the counter
	Close() error
}

// Cache provides in-memory LRU caching of token counts by content hash.
// Counts are deterministic for fixed input, so cached values never go stale
// within a process.
type Cache struct {
	cache *lru.Cache[string, int]
}

// NewCache creates a new count cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k counts
	}
	cache, err := lru.New[string, int](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, int](10000)
	}
	return &Cache{
		cache: cache,
	}
}

// Get retrieves a count from cache
func (c *Cache) Get(hash string) (int, bool) {
	return c.cache.Get(hash)
}

// Set stores a count in cache with automatic LRU eviction
func (c *Cache) Set(hash string, count int) {
	c.cache.Add(hash, count)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
