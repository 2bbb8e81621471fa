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
var _ driven.Generator = (*LLMClient)(nil)

// LLMClient implements driven.Generator against the LLM service HTTP API
type LLMClient struct {
	baseURL        string
	defaultModel   string
	defaultOptions map[string]any
	client         *http.Client
}

// NewLLMClient creates a client for the LLM service.
// baseURL is the API root, e.g. http://localhost:8001/api/v1.
func NewLLMClient(baseURL, defaultModel string, defaultOptions map[string]any, timeout time.Duration) *LLMClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &LLMClient{
		baseURL:        baseURL,
		defaultModel:   defaultModel,
		defaultOptions: defaultOptions,
		client:         &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Prompt  string         `json:"prompt"`
	Model   string         `json:"model"`
	Options map[string]any `json:"options,omitempty"`
}

// Generate runs one completion
func (c *LLMClient) Generate(ctx context.Context, prompt, model string, options map[string]any) (*domain.Generation, error) {
	if model == "" {
		model = c.defaultModel
	}
	if options == nil {
		options = c.defaultOptions
	}

	body, err := json.Marshal(generateRequest{
		Prompt:  prompt,
		Model:   model,
		Options: options,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: llm service: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.NewServiceError(domain.ServiceGeneration,
			fmt.Sprintf("llm service returned status %d", resp.StatusCode),
			map[string]any{"status": resp.StatusCode, "response": string(errBody)})
	}

	var generation domain.Generation
	if err := json.NewDecoder(resp.Body).Decode(&generation); err != nil {
		return nil, domain.NewServiceError(domain.ServiceGeneration,
			"llm service returned malformed response",
			map[string]any{"error": err.Error()})
	}
	return &generation, nil
}

// Model returns the default model name
func (c *LLMClient) Model() string {
	return c.defaultModel
}

// Ping verifies the LLM service is reachable
func (c *LLMClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: llm service: %v", domain.ErrServiceUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

// Close releases resources held by the client
func (c *LLMClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
