package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// DocumentTracker is the idempotency ledger for chunked documents. It
// prefers availability over consistency: a failing store never blocks the
// pipeline, it only degrades dedup, so read and write failures are logged
// and swallowed. The worst case is re-embedding a document, not losing one.
type DocumentTracker struct {
	store  driven.ProcessedDocumentStore
	logger *slog.Logger
}

// NewDocumentTracker creates a new DocumentTracker
func NewDocumentTracker(store driven.ProcessedDocumentStore, logger *slog.Logger) *DocumentTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentTracker{store: store, logger: logger}
}

// HashContent returns the hex-encoded SHA-256 of the raw document bytes
func (t *DocumentTracker) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// IsProcessed reports whether path was already chunked with exactly this
// content hash. A missing record, a changed hash or a store failure all
// report false.
func (t *DocumentTracker) IsProcessed(ctx context.Context, path, contentHash string) bool {
	doc, err := t.store.GetByPath(ctx, path)
	if err != nil {
		if !isNotFound(err) {
			t.logger.Warn("tracker read failed, treating document as unprocessed",
				"path", path, "error", err)
		}
		return false
	}
	return doc.Hash == contentHash
}

// Get returns the tracking record for a path
func (t *DocumentTracker) Get(ctx context.Context, path string) (*domain.ProcessedDocument, error) {
	return t.store.GetByPath(ctx, path)
}

// Track records a processed document, overwriting any previous record for
// the same path. Store failures are logged, never returned.
func (t *DocumentTracker) Track(ctx context.Context, doc *domain.ProcessedDocument) {
	if doc.ProcessedAt.IsZero() {
		doc.ProcessedAt = time.Now().UTC()
	}
	if err := t.store.Upsert(ctx, doc); err != nil {
		t.logger.Warn("tracker write failed, document will be reprocessed on next run",
			"path", doc.Path, "error", err)
	}
}

// List returns tracking records sorted newest first, optionally filtered by
// vector collection. A store failure is logged and degrades to an empty
// list.
func (t *DocumentTracker) List(ctx context.Context, collectionName string, limit int) []*domain.ProcessedDocument {
	docs, err := t.store.List(ctx, collectionName, limit)
	if err != nil {
		t.logger.Warn("tracker list failed, reporting no processed documents",
			"collection", collectionName, "error", err)
		return []*domain.ProcessedDocument{}
	}
	return docs
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
