package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven/mocks"
)

func TestContextRetriever_FiltersBelowThreshold(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockEmbeddingStore()
	store.SetQueryHits("docs", []domain.ContextDocument{
		{ID: "1", Text: "high", Score: 0.9},
		{ID: "2", Text: "borderline", Score: 0.45},
		{ID: "3", Text: "low", Score: 0.2},
	})

	r := NewContextRetriever(store, 0.45, 5, nil)
	got, err := r.Retrieve(ctx, "query", "docs", 0, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 results at or above threshold, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("expected descending order preserved, got %v", got)
	}
}

func TestContextRetriever_EmptyResultIsNotError(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockEmbeddingStore()
	store.SetQueryHits("docs", []domain.ContextDocument{
		{ID: "1", Text: "low", Score: 0.1},
	})

	r := NewContextRetriever(store, 0.45, 5, nil)
	got, err := r.Retrieve(ctx, "query", "docs", 0, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestContextRetriever_PropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockEmbeddingStore()
	store.QueryErr = errors.New("embedding service down")

	r := NewContextRetriever(store, 0, 0, nil)
	if _, err := r.Retrieve(ctx, "query", "docs", 0, ""); err == nil {
		t.Error("expected error from store")
	}
}

func TestContextRetriever_Defaults(t *testing.T) {
	store := mocks.NewMockEmbeddingStore()
	r := NewContextRetriever(store, 0, 0, nil)

	if r.threshold != DefaultSimilarityThreshold {
		t.Errorf("expected default threshold %v, got %v", DefaultSimilarityThreshold, r.threshold)
	}
	if r.topK != DefaultTopK {
		t.Errorf("expected default topK %d, got %d", DefaultTopK, r.topK)
	}
}
