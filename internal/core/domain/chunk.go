package domain

// Chunk is a bounded span of a document's text plus positional metadata.
// It is produced by a chunking strategy and owned by the caller; only its
// embedding and metadata are ever persisted.
type Chunk struct {
	Text     string         `json:"text"`
	Metadata ChunkMetadata  `json:"metadata"`
	Extra    map[string]any `json:"extra,omitempty"` // caller-supplied fields
}

// ChunkMetadata records where a chunk came from and how it was produced.
// Start and End are rune offsets into the source text, end exclusive.
type ChunkMetadata struct {
	Index    int            `json:"chunk_index"`
	Start    int            `json:"chunk_start"`
	End      int            `json:"chunk_end"`
	Strategy string         `json:"strategy"`
	Config   map[string]any `json:"config"`
}
