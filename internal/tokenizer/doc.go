// Package tokenizer supplies token-count oracles for the chunker. Exact
// tokenization is model-specific, so counting is delegated to a provider
// behind the Counter interface rather than computed here.
//
// Two providers are available:
//
//   - remote: an HTTP tokenizer service (POST {"model", "text"} ->
//     {"count"}), with bearer auth, exponential-backoff retry, and an LRU
//     cache keyed by content hash. Counts for fixed input are deterministic,
//     so caching is always safe.
//   - heuristic: a local chars/4 estimate with zero latency, used when no
//     service is configured.
//
// Provider selection follows TEXTCHUNK_TOKENIZER_PROVIDER, then falls back
// to remote when TEXTCHUNK_TOKENIZER_URL is set, then to the heuristic.
//
//	counter, err := tokenizer.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer counter.Close()
package tokenizer
