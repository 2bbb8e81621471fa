package driven

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// ProcessedDocumentStore persists the idempotency ledger of chunked
// documents (PostgreSQL). Records are keyed by document path.
type ProcessedDocumentStore interface {
	// Upsert creates or replaces the record for doc.Path
	Upsert(ctx context.Context, doc *domain.ProcessedDocument) error

	// GetByPath retrieves the record for a path, or domain.ErrNotFound
	GetByPath(ctx context.Context, path string) (*domain.ProcessedDocument, error)

	// List returns records sorted by processed_at descending, optionally
	// filtered by vector collection name. limit <= 0 means the store default.
	List(ctx context.Context, collectionName string, limit int) ([]*domain.ProcessedDocument, error)
}
