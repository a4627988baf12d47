// Package storage provides SQLite-based persistence for ingested
// documents, their chunks, and chunk embeddings.
//
// Tables:
//   - documents: source file metadata (name, type, content hash)
//   - chunks: ordered chunk text with chunking metadata
//   - embeddings: serialized float32 vectors per chunk
//
// Vector similarity search runs in SQL via the sqlite-vec extension on
// cgo builds (sqlite_vec tag, mattn/go-sqlite3) and falls back to a Go
// cosine similarity scan on purego builds (modernc.org/sqlite).
package storage
