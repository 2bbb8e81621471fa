package chunking

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// StrategySemantic is the registry key for boundary-respecting chunking
const StrategySemantic = "semantic"

// Verify interface compliance
var _ Strategy = (*Semantic)(nil)

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// Semantic accumulates whole paragraphs greedily up to maxChunkSize runes.
// Paragraphs that alone exceed the limit are re-split at sentence boundaries;
// a single oversize sentence becomes its own chunk rather than being cut
// mid-sentence. minChunkSize is carried in the config for reproducibility but
// small trailing chunks are kept as-is.
type Semantic struct {
	maxChunkSize int
	minChunkSize int
}

// NewSemantic creates a semantic strategy, validating the parameters
func NewSemantic(maxChunkSize, minChunkSize int) (*Semantic, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive", domain.ErrInvalidChunkParams)
	}
	if minChunkSize < 0 {
		return nil, fmt.Errorf("%w: min chunk size must be non-negative", domain.ErrInvalidChunkParams)
	}
	if minChunkSize > maxChunkSize {
		return nil, fmt.Errorf("%w: min chunk size must not exceed max chunk size", domain.ErrInvalidChunkParams)
	}
	return &Semantic{maxChunkSize: maxChunkSize, minChunkSize: minChunkSize}, nil
}

// ChunkText splits text at paragraph boundaries, falling back to sentence
// boundaries for oversize paragraphs
func (s *Semantic) ChunkText(text string, extra map[string]any) []domain.Chunk {
	if text == "" {
		return []domain.Chunk{}
	}

	paragraphs := splitParagraphs(text)

	var chunks []domain.Chunk
	current := ""
	currentStart := 0

	flush := func() {
		if current == "" {
			return
		}
		chunks = append(chunks, s.newChunk(current, currentStart, len(chunks), extra))
		current = ""
	}

	for _, para := range paragraphs {
		paraLen := utf8.RuneCountInString(para)

		if current != "" && utf8.RuneCountInString(current)+paraLen > s.maxChunkSize {
			flush()
		}

		if paraLen > s.maxChunkSize {
			flush()
			for _, sent := range splitSentences(para) {
				sentLen := utf8.RuneCountInString(sent)
				if current != "" && utf8.RuneCountInString(current)+sentLen > s.maxChunkSize {
					flush()
				}
				if current == "" {
					currentStart = runeIndexOf(text, strings.TrimSpace(sent))
				}
				current += sent
			}
			flush()
			continue
		}

		if current == "" {
			currentStart = runeIndexOf(text, strings.TrimRight(para, "\n"))
		}
		current += para
	}
	flush()

	if chunks == nil {
		return []domain.Chunk{}
	}
	return chunks
}

func (s *Semantic) newChunk(text string, start, index int, extra map[string]any) domain.Chunk {
	return domain.Chunk{
		Text: text,
		Metadata: domain.ChunkMetadata{
			Index:    index,
			Start:    start,
			End:      start + utf8.RuneCountInString(text),
			Strategy: s.Name(),
			Config:   s.Config(),
		},
		Extra: copyExtra(extra),
	}
}

// Name returns the strategy key
func (s *Semantic) Name() string {
	return StrategySemantic
}

// Config returns the strategy parameters
func (s *Semantic) Config() map[string]any {
	return map[string]any{
		"max_chunk_size": s.maxChunkSize,
		"min_chunk_size": s.minChunkSize,
	}
}

// splitParagraphs splits text on blank lines. Each non-blank paragraph keeps
// a trailing newline so rejoined chunks preserve line structure.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphSep.Split(text, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !strings.HasSuffix(p, "\n") {
			p += "\n"
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// splitSentences splits a paragraph at whitespace following sentence-ending
// punctuation. Each sentence keeps a trailing space so rejoined chunks read
// naturally.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	out := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		if strings.TrimSpace(sent) == "" {
			continue
		}
		if !strings.HasSuffix(sent, " ") {
			sent += " "
		}
		out = append(out, sent)
	}
	return out
}

// runeIndexOf returns the rune offset of the first occurrence of sub in text,
// or 0 when absent
func runeIndexOf(text, sub string) int {
	idx := strings.Index(text, sub)
	if idx <= 0 {
		return 0
	}
	return utf8.RuneCountInString(text[:idx])
}
