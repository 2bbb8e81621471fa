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
var _ driven.ProcessedDocumentStore = (*MockProcessedDocumentStore)(nil)

// MockProcessedDocumentStore is a mock implementation of
// ProcessedDocumentStore for testing
type MockProcessedDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.ProcessedDocument

	UpsertCalls int
	GetCalls    int
	UpsertErr   error
	GetErr      error
	ListErr     error
}

// NewMockProcessedDocumentStore creates a new MockProcessedDocumentStore
func NewMockProcessedDocumentStore() *MockProcessedDocumentStore {
	return &MockProcessedDocumentStore{docs: make(map[string]*domain.ProcessedDocument)}
}

func (m *MockProcessedDocumentStore) Upsert(ctx context.Context, doc *domain.ProcessedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.docs[doc.Path] = doc
	return nil
}

func (m *MockProcessedDocumentStore) GetByPath(ctx context.Context, path string) (*domain.ProcessedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	doc, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return doc, nil
}

func (m *MockProcessedDocumentStore) List(ctx context.Context, collectionName string, limit int) ([]*domain.ProcessedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var docs []*domain.ProcessedDocument
	for _, doc := range m.docs {
		if collectionName != "" && doc.CollectionName != collectionName {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ProcessedAt.After(docs[j].ProcessedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}
