// Package chromem implements the embedding store on an embedded chromem-go
// vector database. It needs no external embedding service, which makes it
// the default backend for local and single-node deployments.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	chromemgo "github.com/philippgille/chromem-go"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingStore = (*Store)(nil)

// Store implements driven.EmbeddingStore using chromem-go
type Store struct {
	db    *chromemgo.DB
	embed chromemgo.EmbeddingFunc
}

// New creates an in-memory store. embed nil selects the chromem default
// embedding function.
func New(embed chromemgo.EmbeddingFunc) *Store {
	return &Store{db: chromemgo.NewDB(), embed: embed}
}

// NewPersistent creates a store backed by an on-disk database at path
func NewPersistent(path string, embed chromemgo.EmbeddingFunc) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	return &Store{db: db, embed: embed}, nil
}

// EmbedAndStore embeds texts and stores them in the named collection.
// The model parameter is ignored: the embedding function is fixed at
// construction time.
func (s *Store) EmbedAndStore(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error) {
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	ids := make([]string, len(texts))
	docs := make([]chromemgo.Document, len(texts))
	for i, text := range texts {
		ids[i] = uuid.NewString()

		var meta map[string]string
		if i < len(metadata) {
			meta = stringifyMetadata(metadata[i])
		}
		docs[i] = chromemgo.Document{
			ID:       ids[i],
			Metadata: meta,
			Content:  text,
		}
	}

	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, domain.NewServiceError(domain.ServiceEmbedding,
			"failed to embed and store documents",
			map[string]any{"collection": collectionName, "error": err.Error()})
	}
	return ids, nil
}

// Query runs a similarity search. topK is clamped to the collection size;
// an empty collection yields an empty result.
func (s *Store) Query(ctx context.Context, queryText, collectionName string, topK int, model string) ([]domain.ContextDocument, error) {
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	count := col.Count()
	if count == 0 {
		return []domain.ContextDocument{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := col.Query(ctx, queryText, topK, nil, nil)
	if err != nil {
		return nil, domain.NewServiceError(domain.ServiceEmbedding,
			"similarity query failed",
			map[string]any{"collection": collectionName, "error": err.Error()})
	}

	docs := make([]domain.ContextDocument, len(results))
	for i, res := range results {
		docs[i] = domain.ContextDocument{
			ID:       res.ID,
			Text:     res.Content,
			Score:    float64(res.Similarity),
			Metadata: anyMetadata(res.Metadata),
		}
	}
	return docs, nil
}

// ListCollections returns all collections with their document counts
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	collections := s.db.ListCollections()

	infos := make([]domain.CollectionInfo, 0, len(collections))
	for name, col := range collections {
		infos = append(infos, domain.CollectionInfo{
			Name:  name,
			Count: col.Count(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// HealthCheck always succeeds: the store is in-process
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close releases resources held by the store
func (s *Store) Close() error {
	return nil
}

func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func anyMetadata(meta map[string]string) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
