package domain

import "time"

// ProcessedDocument is the tracking record for a chunked-and-embedded
// document. At most one live record exists per Path; reprocessing the same
// path overwrites the record rather than appending.
type ProcessedDocument struct {
	Path           string         `json:"document_path"`
	CollectionName string         `json:"collection_name"`
	Hash           string         `json:"document_hash"`
	ChunkCount     int            `json:"chunk_count"`
	ChunkIDs       []string       `json:"chunk_ids"`
	Strategy       string         `json:"chunking_strategy"`
	StrategyConfig map[string]any `json:"chunking_config"`
	Metadata       map[string]any `json:"metadata"`
	ProcessedAt    time.Time      `json:"processed_at"`
}

// ObjectInfo describes one entry of a storage listing
type ObjectInfo struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	IsDir        bool      `json:"is_dir"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectMetadata describes a stored object
type ObjectMetadata struct {
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ChunkDocumentResult is returned by the chunker pipeline for one document
type ChunkDocumentResult struct {
	Path             string         `json:"document_path"`
	CollectionName   string         `json:"collection_name"`
	ChunkCount       int            `json:"chunk_count"`
	ChunkIDs         []string       `json:"chunk_ids"`
	Strategy         string         `json:"chunking_strategy"`
	StrategyConfig   map[string]any `json:"chunking_config"`
	AlreadyProcessed bool           `json:"already_processed"`
}

// ChunkCollectionResult aggregates per-document results for a batch run.
// Documents that failed are excluded; the batch itself never fails because
// one member did.
type ChunkCollectionResult struct {
	CollectionPath       string                 `json:"collection_path"`
	VectorCollectionName string                 `json:"vector_collection_name"`
	DocumentCount        int                    `json:"document_count"`
	ChunkCount           int                    `json:"chunk_count"`
	Documents            []*ChunkDocumentResult `json:"documents"`
}

// CollectionInfo describes one vector-store collection
type CollectionInfo struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Dimension int    `json:"dimension"`
}
