package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/mcp"
	"github.com/studos/docchunk-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("DocChunk MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Vector Extension: %v\n", storage.VectorExtensionAvailable)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("DocChunk MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s, Vector Extension: %v",
		storage.BuildMode, storage.DriverName, storage.VectorExtensionAvailable)

	dbPath := os.Getenv("DOCCHUNK_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBDir
	}

	engineCfg := engineConfigFromEnv()
	log.Printf("Chunking config: max_tokens=%d, overlap_tokens=%d",
		engineCfg.MaxTokens, engineCfg.OverlapTokens)

	server, err := mcp.NewServer(dbPath, engineCfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}

// engineConfigFromEnv builds the chunking config from environment
// variables, falling back to the engine defaults.
func engineConfigFromEnv() chunker.Config {
	cfg := chunker.DefaultConfig()
	if raw := os.Getenv("DOCCHUNK_MAX_TOKENS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.MaxTokens = v
		} else {
			log.Printf("Ignoring invalid DOCCHUNK_MAX_TOKENS=%q", raw)
		}
	}
	if raw := os.Getenv("DOCCHUNK_OVERLAP_TOKENS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.OverlapTokens = v
		} else {
			log.Printf("Ignoring invalid DOCCHUNK_OVERLAP_TOKENS=%q", raw)
		}
	}
	return cfg
}
