package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

const defaultListLimit = 100

// Verify interface compliance
var _ driven.ProcessedDocumentStore = (*ProcessedDocumentStore)(nil)

// ProcessedDocumentStore implements driven.ProcessedDocumentStore using
// PostgreSQL. The document path is the primary key, so reprocessing a path
// replaces its record.
type ProcessedDocumentStore struct {
	db *DB
}

// NewProcessedDocumentStore creates a new ProcessedDocumentStore
func NewProcessedDocumentStore(db *DB) *ProcessedDocumentStore {
	return &ProcessedDocumentStore{db: db}
}

// Upsert creates or replaces the record for doc.Path
func (s *ProcessedDocumentStore) Upsert(ctx context.Context, doc *domain.ProcessedDocument) error {
	chunkIDs, err := json.Marshal(doc.ChunkIDs)
	if err != nil {
		return fmt.Errorf("marshal chunk ids: %w", err)
	}
	config, err := json.Marshal(doc.StrategyConfig)
	if err != nil {
		return fmt.Errorf("marshal chunking config: %w", err)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO processed_documents (document_path, collection_name, document_hash, chunk_count, chunk_ids, chunking_strategy, chunking_config, metadata, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (document_path) DO UPDATE SET
			collection_name = EXCLUDED.collection_name,
			document_hash = EXCLUDED.document_hash,
			chunk_count = EXCLUDED.chunk_count,
			chunk_ids = EXCLUDED.chunk_ids,
			chunking_strategy = EXCLUDED.chunking_strategy,
			chunking_config = EXCLUDED.chunking_config,
			metadata = EXCLUDED.metadata,
			processed_at = EXCLUDED.processed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.Path,
		doc.CollectionName,
		doc.Hash,
		doc.ChunkCount,
		chunkIDs,
		doc.Strategy,
		config,
		metadata,
		doc.ProcessedAt,
	)
	return err
}

// GetByPath retrieves the record for a path
func (s *ProcessedDocumentStore) GetByPath(ctx context.Context, path string) (*domain.ProcessedDocument, error) {
	query := `
		SELECT document_path, collection_name, document_hash, chunk_count, chunk_ids, chunking_strategy, chunking_config, metadata, processed_at
		FROM processed_documents
		WHERE document_path = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, path))
}

// List returns records sorted by processed_at descending
func (s *ProcessedDocumentStore) List(ctx context.Context, collectionName string, limit int) ([]*domain.ProcessedDocument, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT document_path, collection_name, document_hash, chunk_count, chunk_ids, chunking_strategy, chunking_config, metadata, processed_at
		FROM processed_documents
		WHERE ($1 = '' OR collection_name = $1)
		ORDER BY processed_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, collectionName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.ProcessedDocument
	for rows.Next() {
		doc, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ProcessedDocumentStore) scanOne(row rowScanner) (*domain.ProcessedDocument, error) {
	var doc domain.ProcessedDocument
	var chunkIDs, config, metadata []byte

	err := row.Scan(
		&doc.Path,
		&doc.CollectionName,
		&doc.Hash,
		&doc.ChunkCount,
		&chunkIDs,
		&doc.Strategy,
		&config,
		&metadata,
		&doc.ProcessedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(chunkIDs, &doc.ChunkIDs); err != nil {
		return nil, fmt.Errorf("unmarshal chunk ids: %w", err)
	}
	if err := json.Unmarshal(config, &doc.StrategyConfig); err != nil {
		return nil, fmt.Errorf("unmarshal chunking config: %w", err)
	}
	if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}
