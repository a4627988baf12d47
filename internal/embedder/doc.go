// Package embedder generates vector embeddings for chunk text.
//
// Providers share one REST implementation (OpenAI and Jina expose the
// same request/response shape) plus a deterministic local provider for
// offline use and tests. All providers retry transient failures with
// exponential backoff and cache results in an LRU keyed by the SHA-256
// of the input text.
package embedder
