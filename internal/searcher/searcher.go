package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/studos/docchunk-mcp/internal/embedder"
	"github.com/studos/docchunk-mcp/internal/storage"
	"github.com/studos/docchunk-mcp/pkg/types"
)

const (
	// DefaultLimit is the result count used when a request doesn't set one
	DefaultLimit = 5
	// MaxLimit caps the result count per request
	MaxLimit = 50
	// DefaultCacheTTL is how long cached responses stay valid
	DefaultCacheTTL = 5 * time.Minute

	cacheSize = 1000
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query    string
	Limit    int
	Filters  *storage.SearchFilters
	UseCache bool
	CacheTTL time.Duration
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []types.SearchResult
	TotalResults int
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher runs semantic queries over stored chunk embeddings
type Searcher struct {
	storage  storage.Storage
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// Cannot happen with a positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage:  store,
		embedder: emb,
		cache:    cache,
	}
}

// Search embeds the query and returns the most similar stored chunks,
// ranked by cosine similarity.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	key := cacheKey(req)
	if req.UseCache {
		if cached, ok := s.checkCache(key); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	queryEmbedding, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := s.storage.SearchVector(ctx, queryEmbedding.Vector, req.Limit, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results, err := s.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}

	response := &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		Duration:     time.Since(startTime),
	}

	if req.UseCache {
		ttl := req.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache.Add(key, &cacheEntry{
			response:  response,
			expiresAt: time.Now().Add(ttl),
		})
	}

	return response, nil
}

// ClearCache drops all cached responses.
func (s *Searcher) ClearCache() {
	s.cache.Purge()
}

func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	return nil
}

func (s *Searcher) checkCache(key [32]byte) (*SearchResponse, bool) {
	entry, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(key)
		return nil, false
	}

	// Shallow copy so callers can't mutate the cached response fields.
	response := *entry.response
	return &response, true
}

// hydrate joins ranked chunk IDs back to chunk content and document
// metadata, preserving ranking order.
func (s *Searcher) hydrate(ctx context.Context, hits []storage.VectorResult) ([]types.SearchResult, error) {
	if len(hits) == 0 {
		return []types.SearchResult{}, nil
	}

	ids := make([]int64, len(hits))
	scores := make(map[int64]float64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkID
		scores[hit.ChunkID] = hit.SimilarityScore
	}

	details, err := s.storage.ListChunkDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk details: %w", err)
	}

	results := make([]types.SearchResult, 0, len(details))
	for _, d := range details {
		results = append(results, types.SearchResult{
			ChunkID:    d.ChunkID,
			DocumentID: d.DocumentID,
			FileName:   d.FileName,
			ChunkIndex: d.ChunkIndex,
			Content:    d.Content,
			Metadata: types.Metadata{
				Heading:        d.Heading,
				Section:        types.SectionTag(d.Section),
				ChunkingMethod: types.ChunkingMethod(d.ChunkingMethod),
			},
			Score: scores[d.ChunkID],
		})
	}
	return results, nil
}

// cacheKey hashes the query together with everything that changes the
// result set.
func cacheKey(req SearchRequest) [32]byte {
	var b strings.Builder
	b.WriteString(req.Query)
	fmt.Fprintf(&b, "|limit=%d", req.Limit)
	if req.Filters != nil {
		fmt.Fprintf(&b, "|types=%s|pattern=%s|min=%f",
			strings.Join(req.Filters.DocTypes, ","), req.Filters.FilePattern, req.Filters.MinRelevance)
	}
	return sha256.Sum256([]byte(b.String()))
}
