package driving

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// ChunkDocumentRequest carries one chunk-and-embed invocation. Zero-value
// optional fields fall back to configured defaults.
type ChunkDocumentRequest struct {
	Path           string         `json:"document_path"`
	CollectionName string         `json:"collection_name,omitempty"`
	Strategy       string         `json:"chunking_strategy,omitempty"`
	StrategyParams map[string]any `json:"chunking_params,omitempty"`
	EmbeddingModel string         `json:"embedding_model,omitempty"`
	Metadata       map[string]any `json:"document_metadata,omitempty"`
}

// ChunkCollectionRequest carries a batch invocation over a storage path
type ChunkCollectionRequest struct {
	Path                 string         `json:"collection_path"`
	VectorCollectionName string         `json:"vector_collection_name,omitempty"`
	Strategy             string         `json:"chunking_strategy,omitempty"`
	StrategyParams       map[string]any `json:"chunking_params,omitempty"`
	EmbeddingModel       string         `json:"embedding_model,omitempty"`
	Metadata             map[string]any `json:"collection_metadata,omitempty"`
	FileExtensions       []string       `json:"file_extensions,omitempty"`
}

// ChunkerService turns stored documents into embedded, searchable chunks,
// exactly once per content version.
type ChunkerService interface {
	// ChunkDocument processes a single document. Re-invoking with unchanged
	// content is a no-op beyond one metadata read.
	ChunkDocument(ctx context.Context, req ChunkDocumentRequest) (*domain.ChunkDocumentResult, error)

	// ChunkCollection processes every document under a storage path.
	// Per-document failures are logged and excluded, never fatal to the batch.
	ChunkCollection(ctx context.Context, req ChunkCollectionRequest) (*domain.ChunkCollectionResult, error)

	// ListProcessedDocuments returns tracked documents, newest first
	ListProcessedDocuments(ctx context.Context, collectionName string, limit int) ([]*domain.ProcessedDocument, error)

	// ListCollections returns the vector-store collections
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)
}
