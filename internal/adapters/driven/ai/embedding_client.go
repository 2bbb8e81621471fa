// Package ai contains HTTP clients for the external embedding and
// generation services, plus the backend factory that selects between them
// and the embedded vector store.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingStore = (*EmbeddingClient)(nil)

const defaultTimeout = 30 * time.Second

// EmbeddingClient implements driven.EmbeddingStore against the embedding
// service HTTP API
type EmbeddingClient struct {
	baseURL      string
	defaultModel string
	client       *http.Client
}

// NewEmbeddingClient creates a client for the embedding service.
// baseURL is the API root, e.g. http://localhost:8000/api/v1.
func NewEmbeddingClient(baseURL, defaultModel string, timeout time.Duration) *EmbeddingClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &EmbeddingClient{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: timeout},
	}
}

type storeRequest struct {
	Texts          []string         `json:"texts"`
	CollectionName string           `json:"collection_name"`
	Metadata       []map[string]any `json:"metadata,omitempty"`
	Model          string           `json:"model"`
}

type storeResponse struct {
	IDs            []string `json:"ids"`
	CollectionName string   `json:"collection_name"`
	Count          int      `json:"count"`
}

// EmbedAndStore embeds texts in one batched call and stores the vectors
func (c *EmbeddingClient) EmbedAndStore(ctx context.Context, texts []string, collectionName string, metadata []map[string]any, model string) ([]string, error) {
	if model == "" {
		model = c.defaultModel
	}

	var out storeResponse
	err := c.post(ctx, "/collections/store", storeRequest{
		Texts:          texts,
		CollectionName: collectionName,
		Metadata:       metadata,
		Model:          model,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.IDs, nil
}

type queryRequest struct {
	QueryTexts     []string `json:"query_texts"`
	CollectionName string   `json:"collection_name"`
	TopK           int      `json:"top_k"`
	Model          string   `json:"model"`
}

type queryResponse struct {
	Results [][]domain.ContextDocument `json:"results"`
}

// Query runs a similarity search against a collection
func (c *EmbeddingClient) Query(ctx context.Context, queryText, collectionName string, topK int, model string) ([]domain.ContextDocument, error) {
	if model == "" {
		model = c.defaultModel
	}

	var out queryResponse
	err := c.post(ctx, "/collections/query", queryRequest{
		QueryTexts:     []string{queryText},
		CollectionName: collectionName,
		TopK:           topK,
		Model:          model,
	}, &out)
	if err != nil {
		return nil, err
	}

	// One query text in, one result list out
	if len(out.Results) == 0 {
		return []domain.ContextDocument{}, nil
	}
	return out.Results[0], nil
}

type listResponse struct {
	Collections []domain.CollectionInfo `json:"collections"`
}

// ListCollections returns all collections known to the embedding service
func (c *EmbeddingClient) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return nil, err
	}

	var out listResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Collections, nil
}

// HealthCheck verifies the embedding service is reachable
func (c *EmbeddingClient) HealthCheck(ctx context.Context) error {
	_, err := c.ListCollections(ctx)
	return err
}

// Close releases resources held by the client
func (c *EmbeddingClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *EmbeddingClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *EmbeddingClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: embedding service: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.NewServiceError(domain.ServiceEmbedding,
			fmt.Sprintf("embedding service returned status %d", resp.StatusCode),
			map[string]any{"status": resp.StatusCode, "response": string(body)})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewServiceError(domain.ServiceEmbedding,
			"embedding service returned malformed response",
			map[string]any{"error": err.Error()})
	}
	return nil
}
