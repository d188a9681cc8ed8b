package tokenizer

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables
const (
	EnvProvider = "TEXTCHUNK_TOKENIZER_PROVIDER"
	EnvEndpoint = "TEXTCHUNK_TOKENIZER_URL"
	EnvAPIKey   = "TEXTCHUNK_TOKENIZER_KEY"
	EnvModel    = "TEXTCHUNK_TOKENIZER_MODEL"
)

// Config holds counter configuration
type Config struct {
	Provider  string
	Endpoint  string
	APIKey    string
	Model     string
	CacheSize int
}

// NewFromEnv creates a counter based on environment variables.
// Priority:
// 1. TEXTCHUNK_TOKENIZER_PROVIDER (remote, heuristic)
// 2. TEXTCHUNK_TOKENIZER_URL set: remote
// 3. Default to the local heuristic
func NewFromEnv() (Counter, error) {
	provider := os.Getenv(EnvProvider)
	endpoint := os.Getenv(EnvEndpoint)
	apiKey := os.Getenv(EnvAPIKey)
	model := os.Getenv(EnvModel)

	cache := NewCache(10000) // Default cache size

	// Explicit provider selection
	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderRemote:
			return NewRemoteProvider(endpoint, apiKey, model, cache)
		case ProviderHeuristic:
			return NewHeuristicProvider(), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
		}
	}

	// Auto-detect based on configured endpoint
	if endpoint != "" {
		return NewRemoteProvider(endpoint, apiKey, model, cache)
	}

	// Fallback to local estimate
	return NewHeuristicProvider(), nil
}

// New creates a counter with explicit configuration
func New(cfg Config) (Counter, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderRemote:
		return NewRemoteProvider(cfg.Endpoint, cfg.APIKey, cfg.Model, cache)
	case ProviderHeuristic:
		return NewHeuristicProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on the
// current environment
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvEndpoint) != "" {
		return ProviderRemote
	}

	return ProviderHeuristic
}
