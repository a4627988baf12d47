// chunktool reads a document, converts it to markdown, runs the
// chunking engine, and prints the chunks as JSON. Useful for inspecting
// how a document will be split before processing it for real.
//
// Usage:
//
//	chunktool [-max-tokens N] [-overlap-tokens N] [-embed] <file>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/converter"
	"github.com/studos/docchunk-mcp/internal/embedder"
	"github.com/studos/docchunk-mcp/pkg/types"
)

type chunkOutput struct {
	ChunkIndex int             `json:"chunk_index"`
	Content    string          `json:"content"`
	TokenCount int             `json:"token_count"`
	Metadata   *types.Metadata `json:"metadata,omitempty"`
	Dimension  int             `json:"dimension,omitempty"`
}

func main() {
	maxTokens := flag.Int("max-tokens", chunker.DefaultMaxTokens, "token budget per chunk")
	overlapTokens := flag.Int("overlap-tokens", chunker.DefaultOverlapTokens, "overlap budget between fallback chunks")
	embed := flag.Bool("embed", false, "embed each chunk with the local provider and report dimensions")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if flag.NArg() != 1 {
		log.Fatal("usage: chunktool [-max-tokens N] [-overlap-tokens N] [-embed] <file>")
	}
	path := flag.Arg(0)

	markdown, err := converter.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	engine, err := chunker.New(chunker.Config{MaxTokens: *maxTokens, OverlapTokens: *overlapTokens})
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	chunks := engine.Chunk(markdown)

	outputs := make([]chunkOutput, len(chunks))
	for i, chunk := range chunks {
		outputs[i] = chunkOutput{
			ChunkIndex: i,
			Content:    chunk.Content,
			TokenCount: chunker.EstimateTokens(chunk.Content),
		}
		if !chunk.Metadata.IsZero() {
			meta := chunk.Metadata
			outputs[i].Metadata = &meta
		}
	}

	if *embed {
		local, err := embedder.NewLocalProvider(nil)
		if err != nil {
			log.Fatalf("create embedder: %v", err)
		}
		for i := range outputs {
			if outputs[i].Content == "" {
				continue
			}
			emb, err := local.GenerateEmbedding(context.Background(), embedder.EmbeddingRequest{
				Text: outputs[i].Content,
			})
			if err != nil {
				log.Fatalf("embed chunk %d: %v", i, err)
			}
			outputs[i].Dimension = emb.Dimension
		}
	}

	encoded, err := json.MarshalIndent(map[string]interface{}{
		"file":           path,
		"chunk_count":    len(outputs),
		"max_tokens":     *maxTokens,
		"overlap_tokens": *overlapTokens,
		"chunks":         outputs,
	}, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(encoded))
}
