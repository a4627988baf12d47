package types

import "crypto/sha256"

// SectionTag identifies the kind of structure a chunk was cut at.
type SectionTag string

const (
	SectionH1         SectionTag = "h1"
	SectionH2         SectionTag = "h2"
	SectionH3         SectionTag = "h3"
	SectionH4         SectionTag = "h4"
	SectionH5         SectionTag = "h5"
	SectionH6         SectionTag = "h6"
	SectionBold       SectionTag = "bold"
	SectionStructural SectionTag = "structural"
)

// ChunkingMethod records which splitting pass produced a chunk. A chunk
// whose top-level section fit the token budget carries no method.
type ChunkingMethod string

const (
	MethodMarkdownHeaders   ChunkingMethod = "markdown_headers"
	MethodBoldHeadings      ChunkingMethod = "bold_headings"
	MethodStructuralMarkers ChunkingMethod = "structural_markers"
	MethodParagraphSplit    ChunkingMethod = "paragraph_split"
)

// HeaderSection returns the tag for a markdown header of the given level.
// Levels outside 1-6 return the empty tag.
func HeaderSection(level int) SectionTag {
	switch level {
	case 1:
		return SectionH1
	case 2:
		return SectionH2
	case 3:
		return SectionH3
	case 4:
		return SectionH4
	case 5:
		return SectionH5
	case 6:
		return SectionH6
	}
	return ""
}

// Metadata describes where a chunk came from. All fields are optional;
// the zero value means "top-level text with no detected structure".
type Metadata struct {
	Heading        string         `json:"heading,omitempty"`
	Section        SectionTag     `json:"section,omitempty"`
	ChunkingMethod ChunkingMethod `json:"chunking_method,omitempty"`
}

// IsZero reports whether no metadata fields are set.
func (m Metadata) IsZero() bool {
	return m.Heading == "" && m.Section == "" && m.ChunkingMethod == ""
}

// Chunk is a bounded span of document text ready for embedding.
// Chunks are immutable once produced and their order in a result slice
// is document order; consumers zip embeddings back by index.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// ContentHash computes the SHA-256 of the chunk content, used for
// deduplication and embedding cache keys.
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}
