package services

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// QueryProcessor normalizes user queries for retrieval. The normalized form
// is used only to embed and search; prompts and responses always carry the
// original query verbatim.
type QueryProcessor struct{}

// NewQueryProcessor creates a new QueryProcessor
func NewQueryProcessor() *QueryProcessor {
	return &QueryProcessor{}
}

// Normalize collapses whitespace, trims, lowercases and strips punctuation
func (p *QueryProcessor) Normalize(query string) string {
	out := whitespaceRun.ReplaceAllString(query, " ")
	out = strings.TrimSpace(out)
	out = strings.ToLower(out)
	out = nonWordChars.ReplaceAllString(out, "")
	return out
}
