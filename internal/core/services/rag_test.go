package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven/mocks"
)

func newRAGFixture() (*mocks.MockEmbeddingStore, *mocks.MockGenerator, *ragService) {
	store := mocks.NewMockEmbeddingStore()
	gen := mocks.NewMockGenerator()
	svc := NewRAGService(store, gen, RAGConfig{
		DefaultCollection:   "docs",
		SimilarityThreshold: 0.45,
		TopK:                5,
	}, nil).(*ragService)
	return store, gen, svc
}

func TestRAGService_EmptyQuery(t *testing.T) {
	_, _, svc := newRAGFixture()

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{Query: query})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "query %q", query)
	}
}

func TestRAGService_UnknownCollection(t *testing.T) {
	store, _, svc := newRAGFixture()
	store.SetQueryHits("docs", nil)

	_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{
		Query:          "hello",
		CollectionName: "missing",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var nfe *domain.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Contains(t, nfe.Details["available_collections"], "docs")
}

func TestRAGService_EndToEnd(t *testing.T) {
	store, gen, svc := newRAGFixture()
	store.SetQueryHits("docs", []domain.ContextDocument{
		{ID: "1", Text: "Paris is the capital of France.", Score: 0.9},
	})
	gen.Response = "The capital of France is Paris."

	resp, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{
		Query: "What is the capital of France?",
	})
	require.NoError(t, err)

	assert.Equal(t, "The capital of France is Paris.", resp.Text)
	require.Len(t, resp.ContextDocuments, 1)
	assert.Equal(t, "Paris is the capital of France.", resp.ContextDocuments[0].Text)

	// the prompt carries the retrieved document and the verbatim query
	assert.Contains(t, gen.LastPrompt, "Paris is the capital of France.")
	assert.Contains(t, gen.LastPrompt, "What is the capital of France?")
}

func TestRAGService_RetrievalUsesNormalizedQuery(t *testing.T) {
	store, gen, svc := newRAGFixture()
	store.SetQueryHits("docs", nil)

	_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{
		Query: "  What IS the   Capital?  ",
	})
	require.NoError(t, err)

	// the prompt keeps the original form, never the normalized one
	assert.Contains(t, gen.LastPrompt, "  What IS the   Capital?  ")
	assert.NotContains(t, strings.SplitN(gen.LastPrompt, "Question:", 2)[0], "what is the capital")
}

func TestRAGService_NoMatchesAboveThreshold(t *testing.T) {
	store, gen, svc := newRAGFixture()
	store.SetQueryHits("docs", []domain.ContextDocument{
		{ID: "1", Text: "unrelated", Score: 0.1},
	})

	resp, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{Query: "hello"})
	require.NoError(t, err)

	assert.Empty(t, resp.ContextDocuments)
	assert.Contains(t, gen.LastPrompt, "No relevant context found.")
}

func TestRAGService_PrevQueriesInPrompt(t *testing.T) {
	store, gen, svc := newRAGFixture()
	store.SetQueryHits("docs", nil)

	_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{
		Query:       "and its population?",
		PrevQueries: []string{"tell me about France"},
	})
	require.NoError(t, err)
	assert.Contains(t, gen.LastPrompt, "Query 1: tell me about France")
}

func TestRAGService_GeneratorErrorPropagates(t *testing.T) {
	store, gen, svc := newRAGFixture()
	store.SetQueryHits("docs", nil)
	gen.GenerateErr = domain.NewServiceError(domain.ServiceGeneration, "model overloaded", nil)

	_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{Query: "hello"})
	require.Error(t, err)

	var se *domain.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.ServiceGeneration, se.Kind)
}

func TestRAGService_StoreDocuments(t *testing.T) {
	store, _, svc := newRAGFixture()

	_, err := svc.StoreDocuments(context.Background(), nil, "", nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ids, err := svc.StoreDocuments(context.Background(), []string{"a", "b"}, "", nil, "")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, []string{"a", "b"}, store.StoredTexts("docs"))
}

func TestRAGService_QueryErrorPropagates(t *testing.T) {
	store, _, svc := newRAGFixture()
	store.SetQueryHits("docs", nil)
	store.QueryErr = errors.New("embedding service down")

	_, err := svc.ProcessQuery(context.Background(), domain.RAGRequest{Query: "hello"})
	require.Error(t, err)
}
