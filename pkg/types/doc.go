// Package types defines the shared data types used across the chunking
// pipeline: the Chunk produced by the splitter, persisted by storage, and
// returned over MCP.
//
// Types here are plain values with validation helpers; they carry no
// behavior beyond hashing and validation so that every layer can depend on
// them without import cycles.
package types
