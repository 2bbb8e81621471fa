package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven/mocks"
)

func TestDocumentTracker_HashContent(t *testing.T) {
	tracker := NewDocumentTracker(mocks.NewMockProcessedDocumentStore(), nil)

	h1 := tracker.HashContent([]byte("hello"))
	h2 := tracker.HashContent([]byte("hello"))
	h3 := tracker.HashContent([]byte("hello!"))

	if h1 != h2 {
		t.Error("same content must hash identically")
	}
	if h1 == h3 {
		t.Error("different content must hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
	// known sha256 of "hello"
	if h1 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected hash: %s", h1)
	}
}

func TestDocumentTracker_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	if tracker.IsProcessed(ctx, "docs/a.txt", "abc") {
		t.Error("untracked document reported as processed")
	}

	tracker.Track(ctx, &domain.ProcessedDocument{
		Path: "docs/a.txt",
		Hash: "abc",
	})

	if !tracker.IsProcessed(ctx, "docs/a.txt", "abc") {
		t.Error("tracked document with matching hash reported as unprocessed")
	}
	if tracker.IsProcessed(ctx, "docs/a.txt", "def") {
		t.Error("changed content hash must report unprocessed")
	}
}

func TestDocumentTracker_ReadFailureReportsUnprocessed(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "abc"})

	store.GetErr = errors.New("connection refused")
	if tracker.IsProcessed(ctx, "docs/a.txt", "abc") {
		t.Error("store failure must degrade to unprocessed, not block")
	}
}

func TestDocumentTracker_ListFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "abc"})

	store.ListErr = errors.New("connection refused")
	docs := tracker.List(ctx, "", 0)
	if len(docs) != 0 {
		t.Errorf("list failure must degrade to empty list, got %d records", len(docs))
	}

	store.ListErr = nil
	if docs := tracker.List(ctx, "", 0); len(docs) != 1 {
		t.Errorf("expected 1 record once the store recovers, got %d", len(docs))
	}
}

func TestDocumentTracker_TrackSwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	store.UpsertErr = errors.New("connection refused")
	// must not panic or surface the error
	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "abc"})

	store.UpsertErr = nil
	if tracker.IsProcessed(ctx, "docs/a.txt", "abc") {
		t.Error("failed write must leave the document unprocessed")
	}
}

func TestDocumentTracker_TrackSetsProcessedAt(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "abc"})

	rec, err := tracker.Get(ctx, "docs/a.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ProcessedAt.IsZero() {
		t.Error("ProcessedAt not set on track")
	}
}

func TestDocumentTracker_TrackOverwrites(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockProcessedDocumentStore()
	tracker := NewDocumentTracker(store, nil)

	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "v1", ChunkCount: 3})
	tracker.Track(ctx, &domain.ProcessedDocument{Path: "docs/a.txt", Hash: "v2", ChunkCount: 5})

	rec, err := tracker.Get(ctx, "docs/a.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Hash != "v2" || rec.ChunkCount != 5 {
		t.Errorf("expected overwritten record, got %+v", rec)
	}

	docs := tracker.List(ctx, "", 0)
	if len(docs) != 1 {
		t.Errorf("expected one live record per path, got %d", len(docs))
	}
}
