//go:build sqlite_vec
// +build sqlite_vec

package storage

// Compiled when building with CGO and the sqlite_vec tag. The
// sqlite-vec extension computes cosine distance at the database layer,
// which keeps vector search fast on large corpora.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates if vector extension is available
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
