package ingester

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/converter"
	"github.com/studos/docchunk-mcp/internal/embedder"
	"github.com/studos/docchunk-mcp/internal/storage"
	"github.com/studos/docchunk-mcp/pkg/types"
)

// PreviewChars is the number of characters of converted markdown
// included in ingestion results.
const PreviewChars = 500

// Ingester coordinates the ingestion pipeline: convert -> chunk ->
// embed -> store.
type Ingester struct {
	engine   *chunker.Engine
	embedder embedder.Embedder
	storage  storage.Storage
	workers  int
}

// Config contains configuration for the ingester
type Config struct {
	Workers int // Number of concurrent embedding workers (default: runtime.NumCPU())
}

// Statistics describes a completed ingestion
type Statistics struct {
	Document      *storage.Document
	ChunksCreated int
	Embedded      int
	Dimension     int
	Skipped       bool // Content hash unchanged, nothing re-ingested
	Preview       string
	Duration      time.Duration
}

// New creates a new Ingester instance
func New(store storage.Storage, emb embedder.Embedder, engine *chunker.Engine, config *Config) *Ingester {
	workers := runtime.NumCPU()
	if config != nil && config.Workers > 0 {
		workers = config.Workers
	}
	return &Ingester{
		engine:   engine,
		embedder: emb,
		storage:  store,
		workers:  workers,
	}
}

// IngestFile reads a document from disk, converts it to markdown, and
// runs the full pipeline.
func (ing *Ingester) IngestFile(ctx context.Context, path, docType string) (*Statistics, error) {
	markdown, err := converter.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return ing.IngestText(ctx, filepath.Base(path), markdown, docType)
}

// IngestText runs the pipeline on already-converted markdown. Documents
// whose content hash matches the stored hash are skipped.
func (ing *Ingester) IngestText(ctx context.Context, fileName, markdown, docType string) (*Statistics, error) {
	if !storage.ValidDocType(docType) {
		return nil, fmt.Errorf("%w: %q", storage.ErrInvalidDocType, docType)
	}

	startTime := time.Now()
	contentHash := sha256.Sum256([]byte(markdown))

	stats := &Statistics{Preview: preview(markdown)}

	// Unchanged content needs no re-ingestion.
	existing, err := ing.storage.GetDocumentByName(ctx, fileName)
	if err == nil && existing.ContentHash == contentHash {
		stats.Document = existing
		stats.ChunksCreated = existing.ChunkCount
		stats.Skipped = true
		stats.Duration = time.Since(startTime)
		return stats, nil
	}
	if err != nil && err != storage.ErrNotFound {
		return nil, err
	}

	chunks := ing.engine.Chunk(markdown)

	embedded, err := ing.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	doc, err := ing.storeDocument(ctx, fileName, docType, contentHash, embedded)
	if err != nil {
		return nil, err
	}

	stats.Document = doc
	stats.ChunksCreated = len(chunks)
	for _, ec := range embedded {
		if ec.Vector != nil {
			stats.Embedded++
		}
	}
	stats.Dimension = ing.embedder.Dimension()
	stats.Duration = time.Since(startTime)
	return stats, nil
}

// embedChunks embeds all chunks with a bounded worker pool. The result
// pairs each chunk with its vector by position so embeddings line up
// with chunks regardless of completion order.
func (ing *Ingester) embedChunks(ctx context.Context, chunks []types.Chunk) ([]types.EmbeddedChunk, error) {
	embedded := make([]types.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = types.EmbeddedChunk{Index: i, Chunk: chunks[i]}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)

	for i := range chunks {
		if chunks[i].Content == "" {
			continue // Nothing to embed for the empty-document chunk
		}
		g.Go(func() error {
			emb, err := ing.embedder.GenerateEmbedding(gctx, embedder.EmbeddingRequest{
				Text: chunks[i].Content,
			})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			embedded[i].Vector = emb.Vector
			embedded[i].Dimension = emb.Dimension
			embedded[i].Provider = emb.Provider
			embedded[i].Model = emb.Model
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embedded, nil
}

// storeDocument persists the document, its chunks, and their embeddings
// in one transaction. Stale chunks from a previous ingestion are
// removed first.
func (ing *Ingester) storeDocument(ctx context.Context, fileName, docType string, contentHash [32]byte,
	embedded []types.EmbeddedChunk) (*storage.Document, error) {

	tx, err := ing.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	doc := &storage.Document{
		FileName:    fileName,
		DocType:     docType,
		ContentHash: contentHash,
		ChunkCount:  len(embedded),
		ProcessedAt: time.Now(),
	}
	if err := tx.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := tx.DeleteChunksByDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old chunks: %w", err)
	}

	for _, ec := range embedded {
		record := &storage.Chunk{
			DocumentID:     doc.ID,
			ChunkIndex:     ec.Index,
			Content:        ec.Chunk.Content,
			ContentHash:    ec.Chunk.ContentHash(),
			TokenCount:     chunker.EstimateTokens(ec.Chunk.Content),
			Heading:        ec.Chunk.Metadata.Heading,
			Section:        string(ec.Chunk.Metadata.Section),
			ChunkingMethod: string(ec.Chunk.Metadata.ChunkingMethod),
		}
		if err := tx.UpsertChunk(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d: %w", ec.Index, err)
		}

		if ec.Vector == nil {
			continue
		}
		if err := tx.UpsertEmbedding(ctx, &storage.Embedding{
			ChunkID:   record.ID,
			Vector:    storage.SerializeVector(ec.Vector),
			Dimension: ec.Dimension,
			Provider:  ec.Provider,
			Model:     ec.Model,
		}); err != nil {
			return nil, fmt.Errorf("failed to store embedding %d: %w", ec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return doc, nil
}

func preview(markdown string) string {
	runes := []rune(markdown)
	if len(runes) <= PreviewChars {
		return markdown
	}
	return string(runes[:PreviewChars])
}
