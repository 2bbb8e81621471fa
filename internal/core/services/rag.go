package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
	"github.com/chatstack/rag-core/internal/core/ports/driving"
)

// Ensure ragService implements RAGService
var _ driving.RAGService = (*ragService)(nil)

// RAGConfig carries the tunables of the RAG pipeline
type RAGConfig struct {
	DefaultCollection   string
	SimilarityThreshold float64
	TopK                int
	PromptTemplate      string
}

// ragService implements the RAGService interface. The pipeline is linear:
// normalize, retrieve, build prompt, generate. Empty retrieved context is
// not an error; the prompt instructs the model to answer it does not know.
type ragService struct {
	embeddings driven.EmbeddingStore
	generator  driven.Generator
	queries    *QueryProcessor
	retriever  *ContextRetriever
	prompts    *PromptBuilder

	defaultCollection string
	logger            *slog.Logger
}

// NewRAGService creates a new RAGService
func NewRAGService(
	embeddings driven.EmbeddingStore,
	generator driven.Generator,
	cfg RAGConfig,
	logger *slog.Logger,
) driving.RAGService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ragService{
		embeddings:        embeddings,
		generator:         generator,
		queries:           NewQueryProcessor(),
		retriever:         NewContextRetriever(embeddings, cfg.SimilarityThreshold, cfg.TopK, logger),
		prompts:           NewPromptBuilder(cfg.PromptTemplate),
		defaultCollection: cfg.DefaultCollection,
		logger:            logger,
	}
}

// ProcessQuery runs one query through the full pipeline
func (s *ragService) ProcessQuery(ctx context.Context, req domain.RAGRequest) (*domain.RAGResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}

	collection := req.CollectionName
	if collection == "" {
		collection = s.defaultCollection
	}

	available, err := s.collectionNames(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(available, collection) {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("collection %q not found", collection),
			Details: map[string]any{"available_collections": available},
		}
	}

	// The normalized form is only for retrieval; the prompt carries the
	// user's query verbatim.
	normalized := s.queries.Normalize(req.Query)

	contextDocs, err := s.retriever.Retrieve(ctx, normalized, collection, req.TopK, req.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	prompt := s.prompts.Build(req.Query, contextDocs, req.PrevQueries)

	generation, err := s.generator.Generate(ctx, prompt, req.LLMModel, req.LLMOptions)
	if err != nil {
		return nil, err
	}

	s.logger.Info("query processed",
		"collection", collection,
		"context_documents", len(contextDocs),
		"model", generation.Model)

	return &domain.RAGResponse{
		Generation:       *generation,
		ContextDocuments: contextDocs,
	}, nil
}

// StoreDocuments embeds raw texts directly into a collection
func (s *ragService) StoreDocuments(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts must not be empty", domain.ErrInvalidInput)
	}
	if collectionName == "" {
		collectionName = s.defaultCollection
	}
	return s.embeddings.EmbedAndStore(ctx, texts, collectionName, metadata, model)
}

// ListCollections returns the vector-store collections
func (s *ragService) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	return s.embeddings.ListCollections(ctx)
}

func (s *ragService) collectionNames(ctx context.Context) ([]string, error) {
	infos, err := s.embeddings.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
