package ai

import (
	"fmt"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/chatstack/rag-core/internal/adapters/driven/chromem"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Embedding store backends
const (
	EmbeddingBackendService = "service"
	EmbeddingBackendChroma  = "chroma"
)

// Generator backends
const (
	GeneratorBackendService = "service"
)

// EmbeddingConfig selects and configures an embedding store backend
type EmbeddingConfig struct {
	// Backend is "service" (HTTP embedding service) or "chroma" (embedded)
	Backend string

	// ServiceURL is the embedding service API root (service backend)
	ServiceURL string

	// Model is the default embedding model (service backend)
	Model string

	// Timeout bounds each service call (service backend)
	Timeout time.Duration

	// ChromaPath is the on-disk database path; empty keeps it in memory
	// (chroma backend)
	ChromaPath string

	// ChromaEmbedding overrides the embedding function (chroma backend);
	// nil selects the chromem default
	ChromaEmbedding chromemgo.EmbeddingFunc
}

// NewEmbeddingStore creates the embedding store selected by cfg.Backend
func NewEmbeddingStore(cfg EmbeddingConfig) (driven.EmbeddingStore, error) {
	switch cfg.Backend {
	case EmbeddingBackendService:
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("embedding service backend requires a service URL")
		}
		return NewEmbeddingClient(cfg.ServiceURL, cfg.Model, cfg.Timeout), nil

	case EmbeddingBackendChroma:
		if cfg.ChromaPath == "" {
			return chromem.New(cfg.ChromaEmbedding), nil
		}
		return chromem.NewPersistent(cfg.ChromaPath, cfg.ChromaEmbedding)

	default:
		return nil, fmt.Errorf("unknown embedding backend: %q", cfg.Backend)
	}
}

// GeneratorConfig selects and configures a generator backend
type GeneratorConfig struct {
	// Backend is "service" (HTTP LLM service)
	Backend string

	// ServiceURL is the LLM service API root
	ServiceURL string

	// Model is the default generation model
	Model string

	// Options are the default generation options
	Options map[string]any

	// Timeout bounds each service call
	Timeout time.Duration
}

// NewGenerator creates the generator selected by cfg.Backend
func NewGenerator(cfg GeneratorConfig) (driven.Generator, error) {
	switch cfg.Backend {
	case GeneratorBackendService:
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("llm service backend requires a service URL")
		}
		return NewLLMClient(cfg.ServiceURL, cfg.Model, cfg.Options, cfg.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown generator backend: %q", cfg.Backend)
	}
}
