package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chatstack/rag-core/internal/core/domain"
)

// DefaultPromptTemplate is the built-in prompt. The behavioral instructions
// are data: deployments override them through configuration, not code.
const DefaultPromptTemplate = `Answer the following question based on the provided context.

Context:
{context}

Previous Queries:
{prev_queries}

Question:
{query}

Important!
- If the user greets (e.g., "hi", "hello"), reply with a friendly greeting and offer help.
- If the user says goodbye (e.g., "bye", "goodbye"), reply with a polite farewell.
- Reply back with ` + "`I Don't know`" + ` if no relevant context found or question is asked from outside the scope of the context.
Only the last question is the user's current question. All previous queries are context to help you understand the conversation flow.

Answer:
`

// Literals rendered when a template section has nothing to show
const (
	emptyContextText     = "No relevant context found."
	emptyPrevQueriesText = "No previous queries."
)

// PromptBuilder renders the prompt template. Rendering is deterministic:
// the same inputs always produce the same prompt.
type PromptBuilder struct {
	template string
}

// NewPromptBuilder creates a PromptBuilder. An empty template selects the
// built-in default.
func NewPromptBuilder(template string) *PromptBuilder {
	if template == "" {
		template = DefaultPromptTemplate
	}
	return &PromptBuilder{template: template}
}

// Build substitutes query, context and prior queries into the template.
// query must be the verbatim user query, not the normalized retrieval form.
func (b *PromptBuilder) Build(query string, contextDocs []domain.ContextDocument, prevQueries []string) string {
	replacer := strings.NewReplacer(
		"{context}", formatContext(contextDocs),
		"{prev_queries}", formatPrevQueries(prevQueries),
		"{query}", query,
	)
	return replacer.Replace(b.template)
}

func formatContext(docs []domain.ContextDocument) string {
	if len(docs) == 0 {
		return emptyContextText
	}

	formatted := make([]string, 0, len(docs))
	for i, doc := range docs {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Document %d:\n%s\n", i+1, doc.Text)
		if len(doc.Metadata) > 0 {
			keys := make([]string, 0, len(doc.Metadata))
			for k := range doc.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, fmt.Sprintf("%s: %v", k, doc.Metadata[k]))
			}
			fmt.Fprintf(&sb, "Metadata: %s\n", strings.Join(pairs, ", "))
		}
		formatted = append(formatted, sb.String())
	}
	return strings.Join(formatted, "\n")
}

func formatPrevQueries(prevQueries []string) string {
	if len(prevQueries) == 0 {
		return emptyPrevQueriesText
	}

	formatted := make([]string, 0, len(prevQueries))
	for i, q := range prevQueries {
		formatted = append(formatted, fmt.Sprintf("Query %d: %s", i+1, q))
	}
	return strings.Join(formatted, "\n")
}
