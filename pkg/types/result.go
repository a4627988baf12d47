package types

// SearchResult is one scored chunk from a semantic search over stored
// documents.
type SearchResult struct {
	ChunkID    int64    `json:"chunk_id"`
	DocumentID int64    `json:"document_id"`
	FileName   string   `json:"file_name"`
	ChunkIndex int      `json:"chunk_index"`
	Content    string   `json:"content"`
	Metadata   Metadata `json:"metadata"`
	Score      float64  `json:"score"`
}

// EmbeddedChunk couples a chunk with the vector produced for it. The
// pairing is positional: embedding i belongs to chunk i of the engine
// output, which is what makes concurrent embedding safe to reassemble.
// A nil Vector means the chunk carries no embedding, which happens only
// for the empty-document chunk.
type EmbeddedChunk struct {
	Index     int       `json:"chunk_index"`
	Chunk     Chunk     `json:"chunk"`
	Vector    []float32 `json:"-"`
	Dimension int       `json:"dimension,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
}
