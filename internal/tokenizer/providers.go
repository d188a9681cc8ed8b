package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider configuration
const (
	ProviderRemote    = "remote"
	ProviderHeuristic = "heuristic"

	// DefaultRemoteModel is the encoding a remote tokenizer service counts
	// against unless overridden
	DefaultRemoteModel = "cl100k_base"

	// HeuristicCharsPerToken is the chars-per-token divisor of the local
	// estimate (average English word is ~4 chars)
	HeuristicCharsPerToken = 4

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// RemoteProvider counts tokens through an HTTP tokenizer service. The
// service contract is POST {"model": ..., "text": ...} returning
// {"count": n}; a local tokenizer sidecar or a hosted endpoint both fit.
type RemoteProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewRemoteProvider creates a counter backed by an HTTP tokenizer service
func NewRemoteProvider(endpoint, apiKey, model string, cache *Cache) (*RemoteProvider, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if model == "" {
		model = DefaultRemoteModel
	}

	return &RemoteProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}, nil
}

func (r *RemoteProvider) Count(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	// Check cache
	hash := ComputeHash(text)
	if r.cache != nil {
		if count, ok := r.cache.Get(hash); ok {
			return count, nil
		}
	}

	// Use retry logic with exponential backoff
	config := DefaultRetryConfig()
	count, err := retryWithBackoff(ctx, config, func() (int, error) {
		return r.callAPI(ctx, text)
	})
	if err != nil {
		return 0, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}

	if r.cache != nil {
		r.cache.Set(hash, count)
	}

	return count, nil
}

func (r *RemoteProvider) callAPI(ctx context.Context, text string) (int, error) {
	reqBody := map[string]interface{}{
		"model": r.model,
		"text":  text,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Count int    `json:"count"`
		Model string `json:"model"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.Count < 0 {
		return 0, fmt.Errorf("negative count %d", apiResp.Count)
	}

	return apiResp.Count, nil
}

func (r *RemoteProvider) Provider() string {
	return ProviderRemote
}

func (r *RemoteProvider) Model() string {
	return r.model
}

func (r *RemoteProvider) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// HeuristicProvider estimates token counts locally as len(text)/4. It is the
// zero-latency fallback when no tokenizer service is configured; counts are
// approximate but deterministic, which is all the chunker requires.
type HeuristicProvider struct{}

// NewHeuristicProvider creates a local estimating counter
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

func (h *HeuristicProvider) Count(_ context.Context, text string) (int, error) {
	return len(text) / HeuristicCharsPerToken, nil
}

func (h *HeuristicProvider) Provider() string {
	return ProviderHeuristic
}

func (h *HeuristicProvider) Model() string {
	return "chars-per-token-estimate"
}

func (h *HeuristicProvider) Close() error {
	return nil
}
