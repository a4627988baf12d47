package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// processDocumentTool returns the tool definition for process_document
func processDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_document",
		Description: "Convert a document to markdown, chunk it, embed the chunks, and store them for search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the document (.md, .markdown, .txt, .html, .htm)",
				},
				"document_type": map[string]interface{}{
					"type":        "string",
					"description": "Document type tag",
					"enum":        []string{"syllabus", "notes", "other"},
					"default":     "other",
				},
			},
			Required: []string{"path"},
		},
	}
}

// chunkTextTool returns the tool definition for chunk_text
func chunkTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_text",
		Description: "Split markdown text into chunks with the adaptive chunking engine; nothing is stored",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Markdown text to chunk",
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Token budget per chunk (default: server config)",
					"minimum":     1,
				},
				"overlap_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Overlap budget between fallback chunks (default: server config)",
					"minimum":     0,
				},
			},
			Required: []string{"text"},
		},
	}
}

// searchDocumentsTool returns the tool definition for search_documents
func searchDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over processed documents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-50)",
					"default":     5,
					"minimum":     1,
					"maximum":     50,
				},
				"document_types": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these document types",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"syllabus", "notes", "other"},
					},
				},
				"min_relevance": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity score threshold (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report corpus statistics, component health, and server configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
