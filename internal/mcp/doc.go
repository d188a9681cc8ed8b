// Package mcp implements the Model Context Protocol (MCP) server for textchunk.
//
// The server exposes four tools to MCP clients:
//   - chunk_text: Split inline text under a token budget and return the chunks
//   - ingest_document: Chunk a file on disk and persist the chunks
//   - get_chunks: Retrieve a document's stored chunks in source order
//   - get_status: Report store statistics and tokenizer configuration
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout is reserved for protocol messages; all logging goes to stderr.
//
// # Tool: chunk_text
//
//	Request:
//	{
//	  "name": "chunk_text",
//	  "arguments": {"text": "First paragraph.\n\nSecond paragraph.", "max_tokens": 512}
//	}
//
//	Response:
//	{
//	  "max_tokens": 512,
//	  "chunk_count": 1,
//	  "over_budget_count": 0,
//	  "chunks": [
//	    {"seq": 0, "content": "...", "token_count": 7, "over_budget": false}
//	  ]
//	}
//
// Chunks come back in source order. A chunk with over_budget set could not be
// brought under the budget even at the finest split granularity.
//
// # Tool: ingest_document
//
// Reads an absolute file path, chunks the content, and stores the result.
// Re-ingesting an unchanged file under the same budget is a no-op unless
// force is set.
//
// # Tool: get_chunks
//
// Returns the stored chunks of a previously ingested document, ordered by
// sequence number, with optional limit/offset pagination. An unknown path
// yields error code -32001.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (counter failure, database, filesystem)
//   - -32001: Document not ingested
//   - -32002: Token budget outside 1..32768
//
// A token-counter failure mid-split aborts the operation; no partial chunk
// list is ever returned or stored.
package mcp
