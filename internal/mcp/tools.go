package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aeon-neo/vocal-ai-sub001/internal/ingest"
	"github.com/aeon-neo/vocal-ai-sub001/internal/splitter"
	"github.com/aeon-neo/vocal-ai-sub001/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeDocumentNotFound = -32001 // Document has not been ingested
	ErrorCodeInvalidBudget    = -32002 // Token budget outside the allowed range
)

// MaxTokenBudget bounds the max_tokens parameter accepted over MCP
const MaxTokenBudget = 32768

// handleChunkText handles the chunk_text tool invocation
func (s *Server) handleChunkText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing",
		})
	}

	maxTokens := getIntDefault(args, "max_tokens", ingest.DefaultMaxTokens)
	if maxTokens < 1 || maxTokens > MaxTokenBudget {
		return nil, newMCPError(ErrorCodeInvalidBudget, "max_tokens must be between 1 and 32768", map[string]interface{}{
			"param": "max_tokens",
			"value": maxTokens,
		})
	}

	sp, err := splitter.New(maxTokens, s.counter)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create splitter", map[string]interface{}{
			"error": err.Error(),
		})
	}
	result, err := sp.Split(ctx, text)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "chunking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks := make([]map[string]interface{}, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		chunks = append(chunks, map[string]interface{}{
			"seq":         chunk.Seq,
			"content":     chunk.Content,
			"token_count": chunk.TokenCount,
			"over_budget": chunk.OverBudget,
		})
	}

	response := map[string]interface{}{
		"max_tokens":        maxTokens,
		"chunk_count":       len(result.Chunks),
		"over_budget_count": result.OverBudget,
		"chunks":            chunks,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIngestDocument handles the ingest_document tool invocation
func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validateFilePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	maxTokens := getIntDefault(args, "max_tokens", ingest.DefaultMaxTokens)
	if maxTokens < 1 || maxTokens > MaxTokenBudget {
		return nil, newMCPError(ErrorCodeInvalidBudget, "max_tokens must be between 1 and 32768", map[string]interface{}{
			"param": "max_tokens",
			"value": maxTokens,
		})
	}
	force := getBoolDefault(args, "force", false)

	result, err := s.ingestor.IngestFile(ctx, path, &ingest.Config{
		MaxTokens: maxTokens,
		Force:     force,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"ingested":          !result.Skipped,
		"skipped":           result.Skipped,
		"path":              result.Document.Path,
		"max_tokens":        result.Document.TokenBudget,
		"chunks_created":    result.ChunksCreated,
		"over_budget_count": result.OverBudget,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetChunks handles the get_chunks tool invocation
func (s *Server) handleGetChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	path = filepath.Clean(path)

	limit := getIntDefault(args, "limit", 0)
	offset := getIntDefault(args, "offset", 0)
	if limit < 0 || offset < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit and offset must be non-negative", nil)
	}

	doc, err := s.storage.GetDocument(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeDocumentNotFound, "document not ingested", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stored, err := s.storage.ListChunksByDocument(ctx, doc.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load chunks", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if offset > len(stored) {
		offset = len(stored)
	}
	window := stored[offset:]
	if limit > 0 && limit < len(window) {
		window = window[:limit]
	}

	chunks := make([]map[string]interface{}, 0, len(window))
	for _, chunk := range window {
		chunks = append(chunks, map[string]interface{}{
			"seq":         chunk.Seq,
			"content":     chunk.Content,
			"token_count": chunk.TokenCount,
			"over_budget": chunk.OverBudget,
		})
	}

	response := map[string]interface{}{
		"path":             doc.Path,
		"max_tokens":       doc.TokenBudget,
		"total_chunks":     len(stored),
		"returned_chunks":  len(chunks),
		"offset":           offset,
		"last_ingested_at": doc.LastIngestedAt.Format("2006-01-02T15:04:05Z07:00"),
		"chunks":           chunks,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"tokenizer": map[string]interface{}{
			"provider": s.counter.Provider(),
			"model":    s.counter.Model(),
		},
		"statistics": map[string]interface{}{
			"documents_count":    status.DocumentsCount,
			"chunks_count":       status.ChunksCount,
			"over_budget_chunks": status.OverBudgetChunks,
		},
		"storage": map[string]interface{}{
			"driver":     storage.DriverName,
			"build_mode": storage.BuildMode,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateFilePath checks that a path names a readable regular file
func validateFilePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrPathIsDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrPathIsDirectory = errors.New("path is a directory, not a file")
)
