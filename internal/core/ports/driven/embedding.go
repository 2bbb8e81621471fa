package driven

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// EmbeddingStore turns text into vectors and stores/queries them in named
// collections. Implementations: HTTP client for the embedding service,
// embedded chromem-go store.
type EmbeddingStore interface {
	// EmbedAndStore embeds texts in a single batched call and stores the
	// vectors in the named collection. metadata is optional per-text
	// metadata aligned with texts; model optionally overrides the default.
	// Returns the vector-store IDs in input order.
	EmbedAndStore(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error)

	// Query runs a similarity search and returns results ranked by
	// descending score in [0,1].
	Query(ctx context.Context, queryText, collectionName string, topK int, model string) ([]domain.ContextDocument, error)

	// ListCollections returns all known collections
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store
	Close() error
}
