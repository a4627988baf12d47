package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/embedder"
	"github.com/studos/docchunk-mcp/internal/ingester"
	"github.com/studos/docchunk-mcp/internal/searcher"
	"github.com/studos/docchunk-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "docchunk-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBDir is the default location for the database
	DefaultDBDir = "~/.docchunk"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	embedder embedder.Embedder
	engine   *chunker.Engine
	ingester *ingester.Ingester
	searcher *searcher.Searcher
}

// NewServer creates a new MCP server instance. The embedding provider
// is resolved from the environment.
func NewServer(dbPath string, engineCfg chunker.Config) (*Server, error) {
	if dbPath == "" || dbPath == DefaultDBDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docchunk")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbFile := filepath.Join(dbPath, "docchunk.db")

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	engine, err := chunker.New(engineCfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize chunking engine: %w", err)
	}

	return newServer(store, emb, engine), nil
}

// newServer wires dependencies; split from NewServer so tests can
// inject an in-memory store and the local embedding provider.
func newServer(store storage.Storage, emb embedder.Embedder, engine *chunker.Engine) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		embedder: emb,
		engine:   engine,
		ingester: ingester.New(store, emb, engine, nil),
		searcher: searcher.NewSearcher(store, emb),
	}

	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.storage.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(processDocumentTool(), s.handleProcessDocument)
	s.mcp.AddTool(chunkTextTool(), s.handleChunkText)
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
