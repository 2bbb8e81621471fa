package driven

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// ObjectStore is a path-addressed read-only document store (local
// filesystem or object storage).
type ObjectStore interface {
	// Exists reports whether an object is present at path
	Exists(ctx context.Context, path string) (bool, error)

	// ReadBytes returns the full content of the object at path
	ReadBytes(ctx context.Context, path string) ([]byte, error)

	// ReadText returns the object content decoded as text
	ReadText(ctx context.Context, path string) (string, error)

	// ReadMetadata returns content type, size and modification time
	ReadMetadata(ctx context.Context, path string) (*domain.ObjectMetadata, error)

	// List returns the entries directly under path
	List(ctx context.Context, path string) ([]domain.ObjectInfo, error)
}
