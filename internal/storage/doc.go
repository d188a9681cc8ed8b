// Package storage persists chunked documents in SQLite: one row per source
// document (path, content hash, budget) and one row per chunk, keyed by
// (document_id, seq) so stored order always matches source order.
//
// The Storage interface is implemented by SQLiteStorage; transactions expose
// the same interface via BeginTx, letting the ingestion pipeline write a
// document's chunks atomically.
//
// Two SQLite drivers are supported behind build tags: modernc.org/sqlite
// (pure Go, default) and github.com/mattn/go-sqlite3 (cgo_sqlite tag).
// Schema changes go through semver-ordered migrations in migrations.go.
package storage
