package storage

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDocument(fileName, docType string) *Document {
	return &Document{
		FileName:    fileName,
		DocType:     docType,
		ContentHash: sha256.Sum256([]byte(fileName)),
		ProcessedAt: time.Now(),
	}
}

func TestValidDocType(t *testing.T) {
	assert.True(t, ValidDocType(DocTypeSyllabus))
	assert.True(t, ValidDocType(DocTypeNotes))
	assert.True(t, ValidDocType(DocTypeOther))
	assert.False(t, ValidDocType("thesis"))
	assert.False(t, ValidDocType(""))
}

func TestUpsertDocument(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("syllabus.md", DocTypeSyllabus)
	require.NoError(t, store.UpsertDocument(ctx, doc))
	assert.NotZero(t, doc.ID)

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "syllabus.md", got.FileName)
	assert.Equal(t, DocTypeSyllabus, got.DocType)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
}

func TestUpsertDocument_ConflictUpdatesInPlace(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("notes.md", DocTypeNotes)
	require.NoError(t, store.UpsertDocument(ctx, doc))
	firstID := doc.ID

	updated := testDocument("notes.md", DocTypeOther)
	updated.ChunkCount = 7
	require.NoError(t, store.UpsertDocument(ctx, updated))
	assert.Equal(t, firstID, updated.ID, "reingesting the same file keeps its ID")

	got, err := store.GetDocumentByName(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, DocTypeOther, got.DocType)
	assert.Equal(t, 7, got.ChunkCount)
}

func TestUpsertDocument_InvalidType(t *testing.T) {
	store := newTestStorage(t)

	doc := testDocument("weird.md", "thesis")
	err := store.UpsertDocument(context.Background(), doc)
	assert.ErrorIs(t, err, ErrInvalidDocType)
}

func TestGetDocumentByHash(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("hashed.md", DocTypeOther)
	require.NoError(t, store.UpsertDocument(ctx, doc))

	got, err := store.GetDocumentByHash(ctx, doc.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = store.GetDocumentByHash(ctx, sha256.Sum256([]byte("unknown")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertDocument(ctx, testDocument("b.md", DocTypeNotes)))
	require.NoError(t, store.UpsertDocument(ctx, testDocument("a.md", DocTypeSyllabus)))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].FileName, "documents are ordered by file name")
	assert.Equal(t, "b.md", docs[1].FileName)
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetDocument(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetDocumentByName(context.Background(), "nope.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func storeDocWithChunks(t *testing.T, store *SQLiteStorage, fileName string, contents []string) (*Document, []*Chunk) {
	t.Helper()
	ctx := context.Background()

	doc := testDocument(fileName, DocTypeNotes)
	doc.ChunkCount = len(contents)
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunks := make([]*Chunk, len(contents))
	for i, content := range contents {
		chunk := &Chunk{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			Content:     content,
			ContentHash: sha256.Sum256([]byte(content)),
			TokenCount:  len(content),
		}
		require.NoError(t, store.UpsertChunk(ctx, chunk))
		chunks[i] = chunk
	}
	return doc, chunks
}

func TestUpsertChunk_OrderAndMetadata(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("ordered.md", DocTypeNotes)
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunk := &Chunk{
		DocumentID:     doc.ID,
		ChunkIndex:     0,
		Content:        "## Week 1\n\nIntro session.",
		ContentHash:    sha256.Sum256([]byte("## Week 1\n\nIntro session.")),
		TokenCount:     5,
		Heading:        "Week 1",
		Section:        "h2",
		ChunkingMethod: "markdown_headers",
	}
	require.NoError(t, store.UpsertChunk(ctx, chunk))
	assert.NotZero(t, chunk.ID)

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Week 1", got.Heading)
	assert.Equal(t, "h2", got.Section)
	assert.Equal(t, "markdown_headers", got.ChunkingMethod)
}

func TestListChunksByDocument_OrderedByIndex(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, chunks := storeDocWithChunks(t, store, "seq.md", []string{"first", "second", "third"})

	got, err := store.ListChunksByDocument(ctx, chunks[0].DocumentID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, i, chunk.ChunkIndex)
	}
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "third", got[2].Content)
}

func TestDeleteDocument_CascadesToChunksAndEmbeddings(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc, chunks := storeDocWithChunks(t, store, "cascade.md", []string{"a", "b"})

	emb := &Embedding{
		ChunkID:   chunks[0].ID,
		Vector:    SerializeVector([]float32{1, 0, 0}),
		Dimension: 3,
		Provider:  "local",
		Model:     "local-embeddings",
	}
	require.NoError(t, store.UpsertEmbedding(ctx, emb))

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))

	remaining, err := store.ListChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = store.GetEmbedding(ctx, chunks[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertEmbedding_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, chunks := storeDocWithChunks(t, store, "emb.md", []string{"embed me"})

	vector := []float32{0.1, 0.2, 0.3, 0.4}
	emb := &Embedding{
		ChunkID:   chunks[0].ID,
		Vector:    SerializeVector(vector),
		Dimension: 4,
		Provider:  "openai",
		Model:     "text-embedding-3-small",
	}
	require.NoError(t, store.UpsertEmbedding(ctx, emb))

	got, err := store.GetEmbedding(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Dimension)
	assert.Equal(t, "openai", got.Provider)
	assert.InDeltaSlice(t, vector, DeserializeVector(got.Vector), 1e-6)
}

func TestSearchVector_RanksBySimilarity(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, chunks := storeDocWithChunks(t, store, "search.md", []string{"exact", "close", "far"})

	vectors := [][]float32{
		{1, 0, 0},   // identical to query
		{0.9, 0.1, 0}, // close
		{0, 0, 1},   // orthogonal
	}
	for i, chunk := range chunks {
		require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
			ChunkID:   chunk.ID,
			Vector:    SerializeVector(vectors[i]),
			Dimension: 3,
			Provider:  "local",
			Model:     "test",
		}))
	}

	results, err := store.SearchVector(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunks[0].ID, results[0].ChunkID)
	assert.Equal(t, chunks[1].ID, results[1].ChunkID)
	assert.Greater(t, results[0].SimilarityScore, results[1].SimilarityScore)
}

func TestSearchVector_DocTypeFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	syllabus := testDocument("filter-syllabus.md", DocTypeSyllabus)
	require.NoError(t, store.UpsertDocument(ctx, syllabus))
	notes := testDocument("filter-notes.md", DocTypeNotes)
	require.NoError(t, store.UpsertDocument(ctx, notes))

	for i, doc := range []*Document{syllabus, notes} {
		chunk := &Chunk{
			DocumentID:  doc.ID,
			ChunkIndex:  0,
			Content:     doc.FileName,
			ContentHash: sha256.Sum256([]byte(doc.FileName)),
		}
		require.NoError(t, store.UpsertChunk(ctx, chunk))
		require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
			ChunkID:   chunk.ID,
			Vector:    SerializeVector([]float32{1, float32(i), 0}),
			Dimension: 3,
			Provider:  "local",
			Model:     "test",
		}))
	}

	results, err := store.SearchVector(ctx, []float32{1, 0, 0}, 10, &SearchFilters{
		DocTypes: []string{DocTypeSyllabus},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	details, err := store.ListChunkDetails(ctx, []int64{results[0].ChunkID})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, DocTypeSyllabus, details[0].DocType)
}

func TestSearchVector_MinRelevance(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, chunks := storeDocWithChunks(t, store, "rel.md", []string{"match", "noise"})
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID: chunks[0].ID, Vector: SerializeVector([]float32{1, 0}), Dimension: 2, Provider: "local", Model: "test",
	}))
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID: chunks[1].ID, Vector: SerializeVector([]float32{0, 1}), Dimension: 2, Provider: "local", Model: "test",
	}))

	results, err := store.SearchVector(ctx, []float32{1, 0}, 10, &SearchFilters{MinRelevance: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[0].ID, results[0].ChunkID)
}

func TestListChunkDetails_PreservesInputOrder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, chunks := storeDocWithChunks(t, store, "details.md", []string{"a", "b", "c"})

	ids := []int64{chunks[2].ID, chunks[0].ID}
	details, err := store.ListChunkDetails(ctx, ids)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "c", details[0].Content)
	assert.Equal(t, "a", details[1].Content)
	assert.Equal(t, "details.md", details[0].FileName)
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	doc := testDocument("committed.md", DocTypeNotes)
	require.NoError(t, tx.UpsertDocument(ctx, doc))
	require.NoError(t, tx.Commit())

	_, err = store.GetDocumentByName(ctx, "committed.md")
	require.NoError(t, err)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertDocument(ctx, testDocument("rolled-back.md", DocTypeNotes)))
	require.NoError(t, tx.Rollback())

	_, err = store.GetDocumentByName(ctx, "rolled-back.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetStatus(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.DocumentsCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.False(t, status.Health.EmbeddingsAvailable)
	assert.Equal(t, BuildMode, status.BuildMode)

	_, chunks := storeDocWithChunks(t, store, "status.md", []string{"x"})
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		ChunkID: chunks[0].ID, Vector: SerializeVector([]float32{1}), Dimension: 1, Provider: "local", Model: "test",
	}))

	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocumentsCount)
	assert.Equal(t, 1, status.ChunksCount)
	assert.Equal(t, 1, status.EmbeddingsCount)
	assert.True(t, status.Health.EmbeddingsAvailable)
}

func TestMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mig.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies migrations again; they must be no-ops.
	store, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.GetStatus(context.Background())
	assert.NoError(t, err)
}
