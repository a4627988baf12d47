package chunker

import "github.com/studos/docchunk-mcp/pkg/types"

const (
	// DefaultMaxTokens is the default per-chunk token budget.
	DefaultMaxTokens = 500

	// DefaultOverlapTokens is the default backward-overlap budget. The
	// final fallback pass uses twice this value.
	DefaultOverlapTokens = 50

	// escalationThreshold is the fraction of the budget above which a
	// section that still fits is split anyway when it contains
	// sub-headers or bold headings. Tunable, kept at the historical
	// value for output compatibility.
	escalationThreshold = 0.8

	// minBoldHeadings is how many standalone bold lines a section needs
	// before the bold pass applies.
	minBoldHeadings = 2
)

// Config fixes the budgets of an Engine for its lifetime.
type Config struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultConfig returns the production budgets.
func DefaultConfig() Config {
	return Config{MaxTokens: DefaultMaxTokens, OverlapTokens: DefaultOverlapTokens}
}

// Engine splits documents into bounded, semantically coherent chunks.
// It is immutable after construction and safe for concurrent use across
// independent documents.
type Engine struct {
	maxTokens     int
	overlapTokens int
	strategies    []splitStrategy
}

// New validates the configuration and builds an engine. Configuration
// misuse is the only error this package ever reports; splitting itself
// cannot fail.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxTokens <= 0 {
		return nil, types.ErrInvalidMaxTokens
	}
	if cfg.OverlapTokens < 0 {
		return nil, types.ErrInvalidOverlapTokens
	}
	return &Engine{
		maxTokens:     cfg.MaxTokens,
		overlapTokens: cfg.OverlapTokens,
		strategies: []splitStrategy{
			headerStrategy{},
			boldStrategy{},
			structuralStrategy{},
		},
	}, nil
}

// MaxTokens returns the per-chunk token budget.
func (e *Engine) MaxTokens() int { return e.maxTokens }

// OverlapTokens returns the base overlap budget.
func (e *Engine) OverlapTokens() int { return e.overlapTokens }

// Chunk splits a document into an ordered chunk sequence. Output order is
// document order; a section that fit the budget at the top level becomes
// a single chunk with no chunking method tag. The call is deterministic
// and allocates a fresh result each time.
func (e *Engine) Chunk(text string) []types.Chunk {
	sections := splitByHeaders(text)

	chunks := make([]types.Chunk, 0, len(sections))
	for _, sec := range sections {
		if e.shouldEscalate(sec.text) {
			chunks = append(chunks, e.splitSection(sec)...)
		} else {
			chunks = append(chunks, types.Chunk{Content: sec.text, Metadata: sec.meta})
		}
	}
	return chunks
}

// shouldEscalate decides whether a top-level section goes through the
// cascade: always when over budget, and near budget only when the section
// carries sub-structure worth cutting at.
func (e *Engine) shouldEscalate(text string) bool {
	tokens := EstimateTokens(text)
	if tokens > e.maxTokens {
		return true
	}
	if float64(tokens) <= escalationThreshold*float64(e.maxTokens) {
		return false
	}
	return hasSubHeaders(text) || hasBoldHeadings(text, minBoldHeadings)
}
