package ingester

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studos/docchunk-mcp/internal/chunker"
	"github.com/studos/docchunk-mcp/internal/embedder"
	"github.com/studos/docchunk-mcp/internal/storage"
	"github.com/studos/docchunk-mcp/pkg/types"
)

func newTestIngester(t *testing.T) (*Ingester, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	engine, err := chunker.New(chunker.Config{MaxTokens: 50, OverlapTokens: 5})
	require.NoError(t, err)

	return New(store, emb, engine, &Config{Workers: 2}), store
}

const sampleMarkdown = `# Course Overview

This course covers the foundations of distributed systems over twelve weeks.

## Week 1

Introduction to the course, logistics, and a survey of the landscape.

## Week 2

Time, clocks, and the ordering of events in a distributed system.
`

func TestIngestText_StoresChunksAndEmbeddings(t *testing.T) {
	ing, store := newTestIngester(t)
	ctx := context.Background()

	stats, err := ing.IngestText(ctx, "syllabus.md", sampleMarkdown, storage.DocTypeSyllabus)
	require.NoError(t, err)
	require.NotNil(t, stats.Document)
	assert.False(t, stats.Skipped)
	assert.Greater(t, stats.ChunksCreated, 0)
	assert.Equal(t, stats.ChunksCreated, stats.Embedded)
	assert.Equal(t, embedder.LocalDimension, stats.Dimension)

	chunks, err := store.ListChunksByDocument(ctx, stats.Document.ID)
	require.NoError(t, err)
	require.Len(t, chunks, stats.ChunksCreated)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)

		emb, err := store.GetEmbedding(ctx, chunk.ID)
		require.NoError(t, err)
		assert.Equal(t, embedder.LocalDimension, emb.Dimension)
	}
}

func TestIngestText_EmbeddingsMatchChunkContent(t *testing.T) {
	ing, store := newTestIngester(t)
	ctx := context.Background()

	stats, err := ing.IngestText(ctx, "zip.md", sampleMarkdown, storage.DocTypeNotes)
	require.NoError(t, err)

	// The local provider is deterministic, so each stored vector must
	// equal a fresh embedding of its own chunk's content.
	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	chunks, err := store.ListChunksByDocument(ctx, stats.Document.ID)
	require.NoError(t, err)
	for _, chunk := range chunks {
		want, err := local.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: chunk.Content})
		require.NoError(t, err)

		stored, err := store.GetEmbedding(ctx, chunk.ID)
		require.NoError(t, err)
		assert.Equal(t, want.Vector, storage.DeserializeVector(stored.Vector),
			"embedding for chunk %d must match its own content", chunk.ChunkIndex)
	}
}

func TestEmbedChunks_PairsVectorsByIndex(t *testing.T) {
	ing, _ := newTestIngester(t)
	ctx := context.Background()

	chunks := []types.Chunk{
		{Content: "alpha section text"},
		{Content: ""},
		{Content: "gamma section text"},
	}

	embedded, err := ing.embedChunks(ctx, chunks)
	require.NoError(t, err)
	require.Len(t, embedded, len(chunks))

	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	for i, ec := range embedded {
		assert.Equal(t, i, ec.Index)
		assert.Equal(t, chunks[i], ec.Chunk)

		if chunks[i].Content == "" {
			assert.Nil(t, ec.Vector, "empty chunk carries no embedding")
			continue
		}
		want, err := local.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: chunks[i].Content})
		require.NoError(t, err)
		assert.Equal(t, want.Vector, ec.Vector, "vector %d must belong to chunk %d", i, i)
		assert.Equal(t, embedder.LocalDimension, ec.Dimension)
		assert.Equal(t, embedder.ProviderLocal, ec.Provider)
	}
}

func TestIngestText_SkipsUnchangedContent(t *testing.T) {
	ing, _ := newTestIngester(t)
	ctx := context.Background()

	first, err := ing.IngestText(ctx, "stable.md", sampleMarkdown, storage.DocTypeNotes)
	require.NoError(t, err)
	assert.False(t, first.Skipped)

	second, err := ing.IngestText(ctx, "stable.md", sampleMarkdown, storage.DocTypeNotes)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Equal(t, first.ChunksCreated, second.ChunksCreated)
}

func TestIngestText_ReingestReplacesChunks(t *testing.T) {
	ing, store := newTestIngester(t)
	ctx := context.Background()

	first, err := ing.IngestText(ctx, "changing.md", sampleMarkdown, storage.DocTypeNotes)
	require.NoError(t, err)

	short := "# Revised\n\nA much shorter revision."
	second, err := ing.IngestText(ctx, "changing.md", short, storage.DocTypeNotes)
	require.NoError(t, err)
	assert.False(t, second.Skipped)
	assert.Equal(t, first.Document.ID, second.Document.ID)

	chunks, err := store.ListChunksByDocument(ctx, second.Document.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, second.ChunksCreated, "old chunks must be replaced, not accumulated")
}

func TestIngestText_InvalidDocType(t *testing.T) {
	ing, _ := newTestIngester(t)

	_, err := ing.IngestText(context.Background(), "doc.md", "text", "dissertation")
	assert.ErrorIs(t, err, storage.ErrInvalidDocType)
}

func TestIngestText_Preview(t *testing.T) {
	ing, _ := newTestIngester(t)
	ctx := context.Background()

	stats, err := ing.IngestText(ctx, "short.md", "tiny doc", storage.DocTypeOther)
	require.NoError(t, err)
	assert.Equal(t, "tiny doc", stats.Preview)

	long := "# H\n\n"
	for len(long) < 2*PreviewChars {
		long += "more words here. "
	}
	stats, err = ing.IngestText(ctx, "long.md", long, storage.DocTypeOther)
	require.NoError(t, err)
	assert.Len(t, []rune(stats.Preview), PreviewChars)
}

func TestIngestFile(t *testing.T) {
	ing, store := newTestIngester(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleMarkdown), 0644))

	stats, err := ing.IngestFile(ctx, path, storage.DocTypeNotes)
	require.NoError(t, err)
	assert.Equal(t, "notes.md", stats.Document.FileName)

	doc, err := store.GetDocumentByName(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksCreated, doc.ChunkCount)
}

func TestIngestFile_UnsupportedFormat(t *testing.T) {
	ing, _ := newTestIngester(t)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	_, err := ing.IngestFile(context.Background(), path, storage.DocTypeOther)
	assert.Error(t, err)
}
