package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/converter"
	"github.com/studos/docchunk-mcp/internal/searcher"
	"github.com/studos/docchunk-mcp/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeUnsupportedFormat = -32001 // File format not supported by the converter
	ErrorCodeEmptyQuery        = -32004 // Query parameter is empty
)

// handleProcessDocument handles the process_document tool invocation
func (s *Server) handleProcessDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	docType := getStringDefault(args, "document_type", storage.DocTypeOther)
	if !storage.ValidDocType(docType) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid document_type", map[string]interface{}{
			"param":   "document_type",
			"value":   docType,
			"allowed": []string{storage.DocTypeSyllabus, storage.DocTypeNotes, storage.DocTypeOther},
		})
	}

	stats, err := s.ingester.IngestFile(ctx, path, docType)
	if err != nil {
		if errors.Is(err, converter.ErrUnsupportedFormat) {
			return nil, newMCPError(ErrorCodeUnsupportedFormat, "unsupported document format", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "document processing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"processed":        true,
		"file_name":        stats.Document.FileName,
		"document_type":    stats.Document.DocType,
		"skipped":          stats.Skipped,
		"chunks_created":   stats.ChunksCreated,
		"embeddings":       stats.Embedded,
		"dimension":        stats.Dimension,
		"markdown_preview": stats.Preview,
		"duration_ms":      stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleChunkText handles the chunk_text tool invocation. The text is
// chunked with the engine and returned; nothing is embedded or stored.
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

	engine := s.engine
	maxTokens := getIntDefault(args, "max_tokens", engine.MaxTokens())
	overlapTokens := getIntDefault(args, "overlap_tokens", engine.OverlapTokens())
	if maxTokens != engine.MaxTokens() || overlapTokens != engine.OverlapTokens() {
		override, err := chunker.New(chunker.Config{MaxTokens: maxTokens, OverlapTokens: overlapTokens})
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
				"reason": err.Error(),
			})
		}
		engine = override
	}

	chunks := engine.Chunk(text)

	items := make([]map[string]interface{}, len(chunks))
	for i, chunk := range chunks {
		item := map[string]interface{}{
			"chunk_index": i,
			"content":     chunk.Content,
			"token_count": chunker.EstimateTokens(chunk.Content),
		}
		if !chunk.Metadata.IsZero() {
			item["metadata"] = chunk.Metadata
		}
		items[i] = item
	}

	response := map[string]interface{}{
		"chunk_count":    len(chunks),
		"max_tokens":     maxTokens,
		"overlap_tokens": overlapTokens,
		"chunks":         items,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	filters := &storage.SearchFilters{}
	if rawTypes, ok := args["document_types"].([]interface{}); ok {
		for _, raw := range rawTypes {
			docType, ok := raw.(string)
			if !ok || !storage.ValidDocType(docType) {
				return nil, newMCPError(ErrorCodeInvalidParams, "invalid document_types entry", map[string]interface{}{
					"param": "document_types",
					"value": raw,
				})
			}
			filters.DocTypes = append(filters.DocTypes, docType)
		}
	}
	if minRelevance, ok := args["min_relevance"].(float64); ok {
		filters.MinRelevance = minRelevance
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:    query,
		Limit:    limit,
		Filters:  filters,
		UseCache: true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		result := map[string]interface{}{
			"file_name":   r.FileName,
			"chunk_index": r.ChunkIndex,
			"content":     r.Content,
			"score":       r.Score,
		}
		if !r.Metadata.IsZero() {
			result["metadata"] = r.Metadata
		}
		results[i] = result
	}

	response := map[string]interface{}{
		"query":         query,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       results,
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
		"configuration": map[string]interface{}{
			"max_tokens":         s.engine.MaxTokens(),
			"overlap_tokens":     s.engine.OverlapTokens(),
			"embedding_provider": s.embedder.Provider(),
			"embedding_model":    s.embedder.Model(),
			"dimension":          s.embedder.Dimension(),
		},
		"statistics": map[string]interface{}{
			"documents_count":  status.DocumentsCount,
			"chunks_count":     status.ChunksCount,
			"embeddings_count": status.EmbeddingsCount,
			"db_size_mb":       fmt.Sprintf("%.2f", status.DBSizeMB),
			"build_mode":       status.BuildMode,
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"vector_search_sql":    status.Health.VectorSearchSQL,
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

// validateFilePath checks that path names a readable regular file
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

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
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
	ErrPathIsDirectory = errors.New("path is a directory")
)
