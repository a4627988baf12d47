// Package mcp exposes the ingestion pipeline over the Model Context
// Protocol on stdio. Four tools are served: process_document,
// chunk_text, search_documents, and get_status.
package mcp
