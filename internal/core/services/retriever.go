package services

import (
	"context"
	"log/slog"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Retrieval defaults
const (
	DefaultSimilarityThreshold = 0.45
	DefaultTopK                = 5
)

// ContextRetriever runs similarity search and keeps only results at or
// above the similarity threshold. An empty result set is a normal outcome,
// not an error.
type ContextRetriever struct {
	embeddings driven.EmbeddingStore
	threshold  float64
	topK       int
	logger     *slog.Logger
}

// NewContextRetriever creates a new ContextRetriever. threshold <= 0 and
// topK <= 0 fall back to the defaults.
func NewContextRetriever(embeddings driven.EmbeddingStore, threshold float64, topK int, logger *slog.Logger) *ContextRetriever {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextRetriever{
		embeddings: embeddings,
		threshold:  threshold,
		topK:       topK,
		logger:     logger,
	}
}

// Retrieve queries the collection and filters by the similarity threshold.
// topK <= 0 uses the configured default. Result order (descending score) is
// preserved from the store.
func (r *ContextRetriever) Retrieve(ctx context.Context, query, collectionName string, topK int, model string) ([]domain.ContextDocument, error) {
	if topK <= 0 {
		topK = r.topK
	}

	results, err := r.embeddings.Query(ctx, query, collectionName, topK, model)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.ContextDocument, 0, len(results))
	for _, doc := range results {
		if doc.Score >= r.threshold {
			filtered = append(filtered, doc)
		}
	}

	r.logger.Debug("context retrieved",
		"collection", collectionName,
		"candidates", len(results),
		"above_threshold", len(filtered))
	return filtered, nil
}
