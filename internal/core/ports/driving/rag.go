package driving

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// RAGService answers queries grounded in retrieved context
type RAGService interface {
	// ProcessQuery runs the full pipeline: normalize, retrieve, build
	// prompt, generate. The query must be non-empty after trimming and the
	// collection must exist.
	ProcessQuery(ctx context.Context, req domain.RAGRequest) (*domain.RAGResponse, error)

	// StoreDocuments embeds raw texts directly into a collection
	StoreDocuments(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error)

	// ListCollections returns the vector-store collections
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)
}
