package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocType is returned for unknown document type tags
	ErrInvalidDocType = errors.New("invalid document type")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance and applies
// any pending migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Document operations

const documentColumns = `id, file_name, doc_type, content_hash, chunk_count, processed_at, created_at, updated_at`

func (s *SQLiteStorage) upsertDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	if !ValidDocType(doc.DocType) {
		return fmt.Errorf("%w: %q", ErrInvalidDocType, doc.DocType)
	}

	query := `
		INSERT INTO documents (file_name, doc_type, content_hash, chunk_count, processed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_name) DO UPDATE SET
			doc_type = excluded.doc_type,
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			processed_at = excluded.processed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		doc.FileName, doc.DocType, doc.ContentHash[:], doc.ChunkCount,
		doc.ProcessedAt, now, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.querier(), doc)
}

func scanDocument(row *sql.Row) (*Document, error) {
	var doc Document
	var hash []byte
	var processedAt sql.NullTime
	err := row.Scan(
		&doc.ID, &doc.FileName, &doc.DocType, &hash,
		&doc.ChunkCount, &processedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	if processedAt.Valid {
		doc.ProcessedAt = processedAt.Time
	}
	return &doc, nil
}

func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, documentID int64) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	return scanDocument(q.QueryRowContext(ctx, query, documentID))
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), documentID)
}

func (s *SQLiteStorage) getDocumentByNameWithQuerier(ctx context.Context, q querier, fileName string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE file_name = ?`
	return scanDocument(q.QueryRowContext(ctx, query, fileName))
}

func (s *SQLiteStorage) GetDocumentByName(ctx context.Context, fileName string) (*Document, error) {
	return s.getDocumentByNameWithQuerier(ctx, s.querier(), fileName)
}

func (s *SQLiteStorage) getDocumentByHashWithQuerier(ctx context.Context, q querier, contentHash [32]byte) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = ?`
	return scanDocument(q.QueryRowContext(ctx, query, contentHash[:]))
}

func (s *SQLiteStorage) GetDocumentByHash(ctx context.Context, contentHash [32]byte) (*Document, error) {
	return s.getDocumentByHashWithQuerier(ctx, s.querier(), contentHash)
}

func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY file_name`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		var doc Document
		var hash []byte
		var processedAt sql.NullTime

		err := rows.Scan(
			&doc.ID, &doc.FileName, &doc.DocType, &hash,
			&doc.ChunkCount, &processedAt, &doc.CreatedAt, &doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		copy(doc.ContentHash[:], hash)
		if processedAt.Valid {
			doc.ProcessedAt = processedAt.Time
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.querier())
}

func (s *SQLiteStorage) deleteDocumentWithQuerier(ctx context.Context, q querier, documentID int64) error {
	query := `DELETE FROM documents WHERE id = ?`
	_, err := q.ExecContext(ctx, query, documentID)
	return err
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID int64) error {
	return s.deleteDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Chunk operations

const chunkColumns = `id, document_id, chunk_index, content, content_hash, token_count, heading, section, chunking_method, created_at`

func (s *SQLiteStorage) upsertChunkWithQuerier(ctx context.Context, q querier, chunk *Chunk) error {
	query := `
		INSERT INTO chunks (
			document_id, chunk_index, content, content_hash, token_count,
			heading, section, chunking_method, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, chunk_index)
		DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			token_count = excluded.token_count,
			heading = excluded.heading,
			section = excluded.section,
			chunking_method = excluded.chunking_method
		RETURNING id, created_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		chunk.DocumentID, chunk.ChunkIndex, chunk.Content, chunk.ContentHash[:],
		chunk.TokenCount, chunk.Heading, chunk.Section, chunk.ChunkingMethod, now,
	).Scan(&chunk.ID, &chunk.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return s.upsertChunkWithQuerier(ctx, s.querier(), chunk)
}

func (s *SQLiteStorage) getChunkWithQuerier(ctx context.Context, q querier, chunkID int64) (*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = ?`
	var chunk Chunk
	var hash []byte
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &hash,
		&chunk.TokenCount, &chunk.Heading, &chunk.Section, &chunk.ChunkingMethod,
		&chunk.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(chunk.ContentHash[:], hash)
	return &chunk, nil
}

func (s *SQLiteStorage) GetChunk(ctx context.Context, chunkID int64) (*Chunk, error) {
	return s.getChunkWithQuerier(ctx, s.querier(), chunkID)
}

func (s *SQLiteStorage) listChunksByDocumentWithQuerier(ctx context.Context, q querier, documentID int64) ([]*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE document_id = ? ORDER BY chunk_index`
	rows, err := q.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*Chunk, 0)
	for rows.Next() {
		var chunk Chunk
		var hash []byte
		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &hash,
			&chunk.TokenCount, &chunk.Heading, &chunk.Section, &chunk.ChunkingMethod,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		copy(chunk.ContentHash[:], hash)
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStorage) ListChunksByDocument(ctx context.Context, documentID int64) ([]*Chunk, error) {
	return s.listChunksByDocumentWithQuerier(ctx, s.querier(), documentID)
}

func (s *SQLiteStorage) deleteChunksByDocumentWithQuerier(ctx context.Context, q querier, documentID int64) error {
	query := `DELETE FROM chunks WHERE document_id = ?`
	_, err := q.ExecContext(ctx, query, documentID)
	return err
}

func (s *SQLiteStorage) DeleteChunksByDocument(ctx context.Context, documentID int64) error {
	return s.deleteChunksByDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Embedding operations

func (s *SQLiteStorage) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		embedding.ChunkID, embedding.Vector, embedding.Dimension,
		embedding.Provider, embedding.Model, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	if embedding.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			embedding.ID = id
		}
	}

	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), embedding)
}

func (s *SQLiteStorage) getEmbeddingWithQuerier(ctx context.Context, q querier, chunkID int64) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, provider, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var embedding Embedding
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&embedding.ID, &embedding.ChunkID, &embedding.Vector,
		&embedding.Dimension, &embedding.Provider, &embedding.Model,
		&embedding.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return s.getEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

func (s *SQLiteStorage) deleteEmbeddingWithQuerier(ctx context.Context, q querier, chunkID int64) error {
	query := `DELETE FROM embeddings WHERE chunk_id = ?`
	_, err := q.ExecContext(ctx, query, chunkID)
	return err
}

func (s *SQLiteStorage) DeleteEmbedding(ctx context.Context, chunkID int64) error {
	return s.deleteEmbeddingWithQuerier(ctx, s.querier(), chunkID)
}

// Search operations

func (s *SQLiteStorage) SearchVector(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return searchVector(ctx, s.db, vector, limit, filters)
}

// ListChunkDetails hydrates chunks with their document metadata. Results
// preserve the order of chunkIDs, which callers use to keep search
// ranking intact.
func (s *SQLiteStorage) listChunkDetailsWithQuerier(ctx context.Context, q querier, chunkIDs []int64) ([]*ChunkDetail, error) {
	if len(chunkIDs) == 0 {
		return []*ChunkDetail{}, nil
	}

	placeholders := make([]string, len(chunkIDs))
	args := make([]interface{}, len(chunkIDs))
	for i, id := range chunkIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT c.id, c.document_id, d.file_name, d.doc_type, c.chunk_index,
		       c.content, c.heading, c.section, c.chunking_method
		FROM chunks c
		JOIN documents d ON c.document_id = d.id
		WHERE c.id IN (` + strings.Join(placeholders, ",") + `)
	`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[int64]*ChunkDetail, len(chunkIDs))
	for rows.Next() {
		var d ChunkDetail
		err := rows.Scan(
			&d.ChunkID, &d.DocumentID, &d.FileName, &d.DocType, &d.ChunkIndex,
			&d.Content, &d.Heading, &d.Section, &d.ChunkingMethod,
		)
		if err != nil {
			return nil, err
		}
		byID[d.ChunkID] = &d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := make([]*ChunkDetail, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if d, ok := byID[id]; ok {
			details = append(details, d)
		}
	}
	return details, nil
}

func (s *SQLiteStorage) ListChunkDetails(ctx context.Context, chunkIDs []int64) ([]*ChunkDetail, error) {
	return s.listChunkDetailsWithQuerier(ctx, s.querier(), chunkIDs)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*CorpusStatus, error) {
	status := &CorpusStatus{BuildMode: BuildMode}

	var docCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&docCount); err != nil {
		return nil, err
	}
	status.DocumentsCount = docCount

	var chunkCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&chunkCount); err != nil {
		return nil, err
	}
	status.ChunksCount = chunkCount

	var embeddingCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&embeddingCount); err != nil {
		return nil, err
	}
	status.EmbeddingsCount = embeddingCount

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DBSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: embeddingCount > 0,
		VectorSearchSQL:     VectorExtensionAvailable,
	}

	return status, nil
}

// Transaction implementations delegate to the internal querier helpers.

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *Document) error {
	return t.storage.upsertDocumentWithQuerier(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) GetDocumentByName(ctx context.Context, fileName string) (*Document, error) {
	return t.storage.getDocumentByNameWithQuerier(ctx, t.querier(), fileName)
}

func (t *sqliteTx) GetDocumentByHash(ctx context.Context, contentHash [32]byte) (*Document, error) {
	return t.storage.getDocumentByHashWithQuerier(ctx, t.querier(), contentHash)
}

func (t *sqliteTx) ListDocuments(ctx context.Context) ([]*Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, documentID int64) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return t.storage.upsertChunkWithQuerier(ctx, t.querier(), chunk)
}

func (t *sqliteTx) GetChunk(ctx context.Context, chunkID int64) (*Chunk, error) {
	return t.storage.getChunkWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) ListChunksByDocument(ctx context.Context, documentID int64) ([]*Chunk, error) {
	return t.storage.listChunksByDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) DeleteChunksByDocument(ctx context.Context, documentID int64) error {
	return t.storage.deleteChunksByDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.storage.upsertEmbeddingWithQuerier(ctx, t.querier(), embedding)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	return t.storage.getEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) DeleteEmbedding(ctx context.Context, chunkID int64) error {
	return t.storage.deleteEmbeddingWithQuerier(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) SearchVector(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return t.storage.SearchVector(ctx, vector, limit, filters)
}

func (t *sqliteTx) ListChunkDetails(ctx context.Context, chunkIDs []int64) ([]*ChunkDetail, error) {
	return t.storage.listChunkDetailsWithQuerier(ctx, t.querier(), chunkIDs)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*CorpusStatus, error) {
	return t.storage.GetStatus(ctx)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
