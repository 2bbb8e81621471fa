package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatstack/rag-core/internal/chunking"
	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
	"github.com/chatstack/rag-core/internal/core/ports/driving"
	"github.com/chatstack/rag-core/internal/extract"
)

// Ensure chunkerService implements ChunkerService
var _ driving.ChunkerService = (*chunkerService)(nil)

// ChunkerConfig carries the chunking pipeline defaults
type ChunkerConfig struct {
	DefaultCollection string
	DefaultStrategy   string
}

// chunkerService implements the ChunkerService interface: read a document
// from storage, dedup by content hash, extract text, chunk, embed, track.
//
// The dedup check and the tracking write are not atomic. Two concurrent
// calls for the same new path can both embed it; the second tracking write
// wins. This is accepted: the cost is duplicate vectors, never lost ones.
type chunkerService struct {
	storage    driven.ObjectStore
	embeddings driven.EmbeddingStore
	tracker    *DocumentTracker
	strategies *chunking.Registry

	defaultCollection string
	defaultStrategy   string
	logger            *slog.Logger
}

// NewChunkerService creates a new ChunkerService
func NewChunkerService(
	storage driven.ObjectStore,
	embeddings driven.EmbeddingStore,
	tracker *DocumentTracker,
	strategies *chunking.Registry,
	cfg ChunkerConfig,
	logger *slog.Logger,
) driving.ChunkerService {
	if strategies == nil {
		strategies = chunking.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaultStrategy := cfg.DefaultStrategy
	if defaultStrategy == "" {
		defaultStrategy = chunking.StrategyFixedSize
	}
	return &chunkerService{
		storage:           storage,
		embeddings:        embeddings,
		tracker:           tracker,
		strategies:        strategies,
		defaultCollection: cfg.DefaultCollection,
		defaultStrategy:   defaultStrategy,
		logger:            logger,
	}
}

// ChunkDocument processes a single document end to end
func (s *chunkerService) ChunkDocument(ctx context.Context, req driving.ChunkDocumentRequest) (*domain.ChunkDocumentResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	collection := req.CollectionName
	if collection == "" {
		collection = s.defaultCollection
	}

	exists, err := s.storage.Exists(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, req.Path)
	}

	objMeta, err := s.storage.ReadMetadata(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("read document metadata: %w", err)
	}

	data, err := s.storage.ReadBytes(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	hash := s.tracker.HashContent(data)

	if s.tracker.IsProcessed(ctx, req.Path, hash) {
		if rec, err := s.tracker.Get(ctx, req.Path); err == nil {
			s.logger.Info("document already processed, skipping", "path", req.Path)
			return &domain.ChunkDocumentResult{
				Path:             rec.Path,
				CollectionName:   rec.CollectionName,
				ChunkCount:       rec.ChunkCount,
				ChunkIDs:         rec.ChunkIDs,
				Strategy:         rec.Strategy,
				StrategyConfig:   rec.StrategyConfig,
				AlreadyProcessed: true,
			}, nil
		}
	}

	docMeta := map[string]any{
		"content_type":  objMeta.ContentType,
		"size":          objMeta.Size,
		"last_modified": objMeta.LastModified,
	}
	for k, v := range req.Metadata {
		docMeta[k] = v
	}

	text, err := extract.Text(data, objMeta.ContentType)
	if err != nil {
		return nil, err
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = s.defaultStrategy
	}
	strategy, err := s.strategies.New(strategyName, chunking.ParamsFromMap(req.StrategyParams))
	if err != nil {
		return nil, err
	}

	chunks := strategy.ChunkText(text, docMeta)

	var ids []string
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		chunkMeta := make([]map[string]any, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
			chunkMeta[i] = flattenChunkMetadata(c)
		}

		ids, err = s.embeddings.EmbedAndStore(ctx, texts, collection, chunkMeta, req.EmbeddingModel)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("document chunked",
		"path", req.Path,
		"collection", collection,
		"strategy", strategy.Name(),
		"chunks", len(ids))

	result := &domain.ChunkDocumentResult{
		Path:           req.Path,
		CollectionName: collection,
		ChunkCount:     len(ids),
		ChunkIDs:       ids,
		Strategy:       strategy.Name(),
		StrategyConfig: strategy.Config(),
	}

	s.tracker.Track(ctx, &domain.ProcessedDocument{
		Path:           req.Path,
		CollectionName: collection,
		Hash:           hash,
		ChunkCount:     len(ids),
		ChunkIDs:       ids,
		Strategy:       strategy.Name(),
		StrategyConfig: strategy.Config(),
		Metadata:       docMeta,
	})

	return result, nil
}

// ChunkCollection processes every document under a storage path. Failures
// are per document: a bad member is logged and excluded from the result, the
// batch continues.
func (s *chunkerService) ChunkCollection(ctx context.Context, req driving.ChunkCollectionRequest) (*domain.ChunkCollectionResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: collection path is required", domain.ErrInvalidInput)
	}

	vectorCollection := req.VectorCollectionName
	if vectorCollection == "" {
		vectorCollection = s.defaultCollection
	}

	objects, err := s.storage.List(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}

	var files []domain.ObjectInfo
	for _, obj := range objects {
		if obj.IsDir {
			continue
		}
		if len(req.FileExtensions) > 0 && !hasAnySuffix(obj.Name, req.FileExtensions) {
			continue
		}
		files = append(files, obj)
	}

	result := &domain.ChunkCollectionResult{
		CollectionPath:       req.Path,
		VectorCollectionName: vectorCollection,
		Documents:            []*domain.ChunkDocumentResult{},
	}
	if len(files) == 0 {
		s.logger.Warn("no documents found in collection", "path", req.Path)
		return result, nil
	}

	for _, obj := range files {
		docMeta := make(map[string]any, len(req.Metadata)+3)
		for k, v := range req.Metadata {
			docMeta[k] = v
		}
		docMeta["collection_path"] = req.Path
		docMeta["document_name"] = obj.Name
		docMeta["document_path"] = obj.Path

		docResult, err := s.ChunkDocument(ctx, driving.ChunkDocumentRequest{
			Path:           obj.Path,
			CollectionName: vectorCollection,
			Strategy:       req.Strategy,
			StrategyParams: req.StrategyParams,
			EmbeddingModel: req.EmbeddingModel,
			Metadata:       docMeta,
		})
		if err != nil {
			s.logger.Error("failed to process document", "path", obj.Path, "error", err)
			continue
		}

		result.Documents = append(result.Documents, docResult)
		result.ChunkCount += docResult.ChunkCount
	}
	result.DocumentCount = len(result.Documents)

	s.logger.Info("collection processed",
		"path", req.Path,
		"documents", result.DocumentCount,
		"chunks", result.ChunkCount)
	return result, nil
}

// ListProcessedDocuments returns tracked documents, newest first
func (s *chunkerService) ListProcessedDocuments(ctx context.Context, collectionName string, limit int) ([]*domain.ProcessedDocument, error) {
	return s.tracker.List(ctx, collectionName, limit), nil
}

// ListCollections returns the vector-store collections
func (s *chunkerService) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	return s.embeddings.ListCollections(ctx)
}

// flattenChunkMetadata merges positional metadata and caller-supplied extra
// fields into one map for the vector store
func flattenChunkMetadata(c domain.Chunk) map[string]any {
	meta := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		meta[k] = v
	}
	meta["chunk_index"] = c.Metadata.Index
	meta["chunk_start"] = c.Metadata.Start
	meta["chunk_end"] = c.Metadata.End
	meta["strategy"] = c.Metadata.Strategy
	return meta
}

func hasAnySuffix(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
