// Package ingest wires the chunking pipeline together: it reads documents
// from disk, splits them under a token budget, and persists the ordered
// chunks in one transaction per document.
//
// Ingestion is incremental. Each document's SHA-256 content hash and budget
// are stored alongside its chunks; an unchanged document is skipped on
// re-ingestion unless forced. Batch runs process documents concurrently with
// a bounded worker pool, but chunk ordering and the sequential token-counter
// discipline within each document are unaffected by the parallelism.
package ingest
