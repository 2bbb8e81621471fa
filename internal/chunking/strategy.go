package chunking

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// Strategy splits raw text into bounded-size chunks with position metadata.
// Implementations must be safe for reuse across documents.
type Strategy interface {
	// ChunkText splits text into chunks. extra is caller-supplied metadata
	// copied onto every chunk. Empty text yields an empty slice, not an error.
	ChunkText(text string, extra map[string]any) []domain.Chunk

	// Name returns the strategy key
	Name() string

	// Config returns the strategy parameters for reproducibility/tracking
	Config() map[string]any
}

// Params carries strategy parameters. Zero values fall back to defaults.
type Params struct {
	ChunkSize    int
	ChunkOverlap int
	MaxChunkSize int
	MinChunkSize int
}

// Default parameter values, matching the configured chunking defaults
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ParamsFromMap reads strategy parameters from a loosely-typed request map.
// JSON numbers arrive as float64.
func ParamsFromMap(m map[string]any) Params {
	return Params{
		ChunkSize:    intFrom(m, "chunk_size"),
		ChunkOverlap: intFrom(m, "chunk_overlap"),
		MaxChunkSize: intFrom(m, "max_chunk_size"),
		MinChunkSize: intFrom(m, "min_chunk_size"),
	}
}

func intFrom(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Factory builds a strategy from parameters, validating them
type Factory func(p Params) (Strategy, error)

// Registry maps strategy keys to factories. Unknown keys are rejected with
// domain.ErrUnsupportedStrategy.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty strategy registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register registers a factory under a key
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New builds a strategy by key
func (r *Registry) New(name string, p Params) (Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedStrategy, name)
	}
	return f(p)
}

// Names returns the registered strategy keys, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry creates a registry with the built-in strategies and the
// built-in parameter defaults
func DefaultRegistry() *Registry {
	return RegistryWithDefaults(Params{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MaxChunkSize: DefaultChunkSize * 3 / 2,
		MinChunkSize: DefaultChunkSize / 2,
	})
}

// RegistryWithDefaults creates a registry with the built-in strategies.
// Request parameters left at zero fall back to defaults.
func RegistryWithDefaults(defaults Params) *Registry {
	r := NewRegistry()

	r.Register(StrategyFixedSize, func(p Params) (Strategy, error) {
		size := p.ChunkSize
		if size == 0 {
			size = defaults.ChunkSize
		}
		overlap := p.ChunkOverlap
		if overlap == 0 && p.ChunkSize == 0 {
			overlap = defaults.ChunkOverlap
		}
		return NewFixedSize(size, overlap)
	})

	r.Register(StrategySemantic, func(p Params) (Strategy, error) {
		maxSize := p.MaxChunkSize
		if maxSize == 0 {
			maxSize = defaults.MaxChunkSize
		}
		minSize := p.MinChunkSize
		if minSize == 0 {
			minSize = defaults.MinChunkSize
		}
		return NewSemantic(maxSize, minSize)
	})

	return r
}

func copyExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
