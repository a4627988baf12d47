// Package ingester runs the document ingestion pipeline: convert the
// source file to markdown, split it with the chunking engine, embed
// every chunk concurrently, and persist document, chunks, and
// embeddings in a single transaction.
//
// Embeddings are re-attached to chunks strictly by index; the engine
// guarantees chunk order matches document order, which makes the zip
// safe.
package ingester
