package storage

import (
	"context"
	"time"
)

// Document types accepted at the ingestion boundary.
const (
	DocTypeSyllabus = "syllabus"
	DocTypeNotes    = "notes"
	DocTypeOther    = "other"
)

// ValidDocType reports whether docType is one of the accepted document
// type tags.
func ValidDocType(docType string) bool {
	switch docType {
	case DocTypeSyllabus, DocTypeNotes, DocTypeOther:
		return true
	}
	return false
}

// Storage defines the interface for persisting and querying ingested
// documents and their chunk embeddings.
type Storage interface {
	// Document operations
	UpsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, documentID int64) (*Document, error)
	GetDocumentByName(ctx context.Context, fileName string) (*Document, error)
	GetDocumentByHash(ctx context.Context, contentHash [32]byte) (*Document, error)
	ListDocuments(ctx context.Context) ([]*Document, error)
	DeleteDocument(ctx context.Context, documentID int64) error

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*Chunk, error)
	ListChunksByDocument(ctx context.Context, documentID int64) ([]*Chunk, error)
	DeleteChunksByDocument(ctx context.Context, documentID int64) error

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)
	DeleteEmbedding(ctx context.Context, chunkID int64) error

	// Search operations
	SearchVector(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error)
	ListChunkDetails(ctx context.Context, chunkIDs []int64) ([]*ChunkDetail, error)

	// Status operations
	GetStatus(ctx context.Context) (*CorpusStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Document represents an ingested source document
type Document struct {
	ID          int64
	FileName    string
	DocType     string // syllabus | notes | other
	ContentHash [32]byte
	ChunkCount  int
	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Chunk represents a stored chunk of a document, in document order
type Chunk struct {
	ID             int64
	DocumentID     int64
	ChunkIndex     int
	Content        string
	ContentHash    [32]byte
	TokenCount     int
	Heading        string
	Section        string
	ChunkingMethod string
	CreatedAt      time.Time
}

// Embedding represents a vector embedding for a chunk
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte // Serialized float32 array
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchFilters narrows vector search results
type SearchFilters struct {
	DocTypes     []string // Filter by document type tags
	FilePattern  string   // Glob pattern for file names
	MinRelevance float64  // Minimum similarity score
}

// VectorResult represents a result from vector similarity search
type VectorResult struct {
	ChunkID         int64
	SimilarityScore float64
}

// ChunkDetail is a chunk hydrated with its document's metadata, used
// to build search responses.
type ChunkDetail struct {
	ChunkID        int64
	DocumentID     int64
	FileName       string
	DocType        string
	ChunkIndex     int
	Content        string
	Heading        string
	Section        string
	ChunkingMethod string
}

// CorpusStatus contains statistics about the stored corpus
type CorpusStatus struct {
	DocumentsCount  int
	ChunksCount     int
	EmbeddingsCount int
	DBSizeMB        float64
	BuildMode       string
	Health          HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	VectorSearchSQL     bool // sqlite-vec available in this build
}
