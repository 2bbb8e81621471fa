package driven

import (
	"context"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// Generator produces text completions from a prompt
type Generator interface {
	// Generate runs one completion. model and options override the
	// configured defaults when non-zero.
	Generate(ctx context.Context, prompt, model string, options map[string]any) (*domain.Generation, error)

	// Model returns the default model name
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generator
	Close() error
}
