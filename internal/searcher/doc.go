// Package searcher answers semantic queries over the stored corpus:
// embed the query, rank stored chunk embeddings by cosine similarity,
// and hydrate the top hits with their document metadata. Responses are
// cached in an LRU with a TTL.
package searcher
