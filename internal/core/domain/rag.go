package domain

// ContextDocument is a retrieved chunk plus its similarity score, used to
// ground a generated answer. Transient; ordering (descending score) matters
// for prompt assembly.
type ContextDocument struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Usage reports token accounting for one generation call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generation is the raw result of one LLM completion
type Generation struct {
	Text         string  `json:"text"`
	Model        string  `json:"model"`
	Usage        Usage   `json:"usage"`
	FinishReason *string `json:"finish_reason"`
}

// RAGResponse is a generation annotated with the context that grounded it
type RAGResponse struct {
	Generation
	ContextDocuments []ContextDocument `json:"context_documents"`
}

// RAGRequest carries one query through the pipeline. Zero-value optional
// fields fall back to configured defaults.
type RAGRequest struct {
	Query          string         `json:"query"`
	CollectionName string         `json:"collection_name,omitempty"`
	LLMModel       string         `json:"llm_model,omitempty"`
	EmbeddingModel string         `json:"embedding_model,omitempty"`
	LLMOptions     map[string]any `json:"llm_options,omitempty"`
	TopK           int            `json:"top_k,omitempty"`
	PrevQueries    []string       `json:"prev_queries,omitempty"`
}
