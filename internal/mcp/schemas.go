package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkTextTool returns the tool definition for chunk_text
func chunkTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_text",
		Description: "Split text into chunks that each fit within a token budget",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to split",
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Token budget per chunk (1-32768)",
					"default":     512,
					"minimum":     1,
					"maximum":     32768,
				},
			},
			Required: []string{"text"},
		},
	}
}

// ingestDocumentTool returns the tool definition for ingest_document
func ingestDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk a document file and persist the chunks for later retrieval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a readable text file",
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Token budget per chunk (1-32768)",
					"default":     512,
					"minimum":     1,
					"maximum":     32768,
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-chunk even when the content hash is unchanged",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getChunksTool returns the tool definition for get_chunks
func getChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_chunks",
		Description: "Retrieve the stored chunks of an ingested document in source order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of a previously ingested document",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of chunks to return (default: all)",
					"minimum":     1,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of leading chunks to skip",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query store-wide statistics and tokenizer configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
