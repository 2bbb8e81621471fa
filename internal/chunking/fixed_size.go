package chunking

import (
	"fmt"
	"strings"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// StrategyFixedSize is the registry key for fixed-size chunking
const StrategyFixedSize = "fixed_size"

// Verify interface compliance
var _ Strategy = (*FixedSize)(nil)

// FixedSize slides a window of chunkSize runes across the text with step
// chunkSize - chunkOverlap. Windows that are whitespace-only after trimming
// are skipped; the last window is clipped to the text length.
type FixedSize struct {
	chunkSize    int
	chunkOverlap int
}

// NewFixedSize creates a fixed-size strategy, validating the parameters
func NewFixedSize(chunkSize, chunkOverlap int) (*FixedSize, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidChunkParams)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative", domain.ErrInvalidChunkParams)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be less than chunk size", domain.ErrInvalidChunkParams)
	}
	return &FixedSize{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// ChunkText splits text into overlapping windows
func (s *FixedSize) ChunkText(text string, extra map[string]any) []domain.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return []domain.Chunk{}
	}

	var chunks []domain.Chunk
	step := s.chunkSize - s.chunkOverlap

	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[i:end])
		if strings.TrimSpace(window) == "" {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			Text: window,
			Metadata: domain.ChunkMetadata{
				Index:    len(chunks),
				Start:    i,
				End:      end,
				Strategy: s.Name(),
				Config:   s.Config(),
			},
			Extra: copyExtra(extra),
		})
	}

	if chunks == nil {
		return []domain.Chunk{}
	}
	return chunks
}

// Name returns the strategy key
func (s *FixedSize) Name() string {
	return StrategyFixedSize
}

// Config returns the strategy parameters
func (s *FixedSize) Config() map[string]any {
	return map[string]any{
		"chunk_size":    s.chunkSize,
		"chunk_overlap": s.chunkOverlap,
	}
}
