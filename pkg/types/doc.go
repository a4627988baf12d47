// Package types defines the shared data model for document chunking:
// chunks, their metadata tags, and search results. It has no internal
// dependencies so both library consumers and internal packages can use it.
package types
