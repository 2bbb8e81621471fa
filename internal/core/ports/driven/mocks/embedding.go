package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingStore = (*MockEmbeddingStore)(nil)

type storedText struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// MockEmbeddingStore is a mock implementation of EmbeddingStore for testing
type MockEmbeddingStore struct {
	mu          sync.RWMutex
	collections map[string][]storedText
	queryHits   map[string][]domain.ContextDocument
	nextID      int

	EmbedCalls int
	QueryCalls int
	EmbedErr   error
	QueryErr   error
}

// NewMockEmbeddingStore creates a new MockEmbeddingStore
func NewMockEmbeddingStore() *MockEmbeddingStore {
	return &MockEmbeddingStore{
		collections: make(map[string][]storedText),
		queryHits:   make(map[string][]domain.ContextDocument),
	}
}

func (m *MockEmbeddingStore) EmbedAndStore(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbedCalls++
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}

	ids := make([]string, len(texts))
	for i, text := range texts {
		m.nextID++
		id := fmt.Sprintf("vec-%d", m.nextID)
		ids[i] = id

		var meta map[string]any
		if i < len(metadata) {
			meta = metadata[i]
		}
		m.collections[collectionName] = append(m.collections[collectionName], storedText{
			ID:       id,
			Text:     text,
			Metadata: meta,
		})
	}
	return ids, nil
}

func (m *MockEmbeddingStore) Query(ctx context.Context, queryText, collectionName string, topK int, model string) ([]domain.ContextDocument, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	hits, ok := m.queryHits[collectionName]
	if !ok {
		// fall back to everything stored, flat score
		for _, doc := range m.collections[collectionName] {
			hits = append(hits, domain.ContextDocument{
				ID:       doc.ID,
				Text:     doc.Text,
				Score:    0.9,
				Metadata: doc.Metadata,
			})
		}
	}
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *MockEmbeddingStore) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	for name := range m.queryHits {
		if _, ok := m.collections[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	infos := make([]domain.CollectionInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, domain.CollectionInfo{
			Name:  name,
			Count: len(m.collections[name]) + len(m.queryHits[name]),
		})
	}
	return infos, nil
}

func (m *MockEmbeddingStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingStore) Close() error {
	return nil
}

// SetQueryHits sets canned similarity results for a collection
func (m *MockEmbeddingStore) SetQueryHits(collectionName string, hits []domain.ContextDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryHits[collectionName] = hits
}

// StoredTexts returns the texts stored in a collection, in insertion order
func (m *MockEmbeddingStore) StoredTexts(collectionName string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	texts := make([]string, 0, len(m.collections[collectionName]))
	for _, doc := range m.collections[collectionName] {
		texts = append(texts, doc.Text)
	}
	return texts
}
