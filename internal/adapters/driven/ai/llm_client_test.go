package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatstack/rag-core/internal/core/domain"
)

func TestLLMClient_Generate(t *testing.T) {
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		reason := "stop"
		json.NewEncoder(w).Encode(domain.Generation{
			Text:  "Paris.",
			Model: gotBody.Model,
			Usage: domain.Usage{
				PromptTokens:     12,
				CompletionTokens: 2,
				TotalTokens:      14,
			},
			FinishReason: &reason,
		})
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "default-llm", map[string]any{"temperature": 0.2}, 0)
	gen, err := c.Generate(context.Background(), "what is the capital of france", "", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gen.Text != "Paris." || gen.Model != "default-llm" {
		t.Errorf("unexpected generation: %+v", gen)
	}
	if gen.Usage.TotalTokens != 14 {
		t.Errorf("unexpected usage: %+v", gen.Usage)
	}
	if gen.FinishReason == nil || *gen.FinishReason != "stop" {
		t.Errorf("unexpected finish reason: %v", gen.FinishReason)
	}

	// defaults must be applied when the request leaves them empty
	if gotBody.Model != "default-llm" {
		t.Errorf("expected default model, got %q", gotBody.Model)
	}
	if gotBody.Options["temperature"] != 0.2 {
		t.Errorf("expected default options, got %v", gotBody.Options)
	}
}

func TestLLMClient_ExplicitModelAndOptions(t *testing.T) {
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(domain.Generation{Text: "ok"})
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "default-llm", nil, 0)
	_, err := c.Generate(context.Background(), "p", "other-model", map[string]any{"max_tokens": float64(100)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotBody.Model != "other-model" {
		t.Errorf("expected explicit model, got %q", gotBody.Model)
	}
	if gotBody.Options["max_tokens"] != float64(100) {
		t.Errorf("expected explicit options, got %v", gotBody.Options)
	}
}

func TestLLMClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "m", nil, 0)
	_, err := c.Generate(context.Background(), "p", "", nil)

	var se *domain.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Kind != domain.ServiceGeneration {
		t.Errorf("expected generation kind, got %s", se.Kind)
	}
}

func TestLLMClient_ConnectionError(t *testing.T) {
	c := NewLLMClient("http://127.0.0.1:1", "m", nil, 0)

	_, err := c.Generate(context.Background(), "p", "", nil)
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestNewEmbeddingStore_Backends(t *testing.T) {
	store, err := NewEmbeddingStore(EmbeddingConfig{
		Backend:    EmbeddingBackendService,
		ServiceURL: "http://localhost:8000/api/v1",
	})
	if err != nil || store == nil {
		t.Errorf("service backend: %v", err)
	}

	store, err = NewEmbeddingStore(EmbeddingConfig{Backend: EmbeddingBackendChroma})
	if err != nil || store == nil {
		t.Errorf("chroma backend: %v", err)
	}

	if _, err := NewEmbeddingStore(EmbeddingConfig{Backend: "bogus"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewEmbeddingStore(EmbeddingConfig{Backend: EmbeddingBackendService}); err == nil {
		t.Error("expected error for missing service URL")
	}
}

func TestNewGenerator_Backends(t *testing.T) {
	gen, err := NewGenerator(GeneratorConfig{
		Backend:    GeneratorBackendService,
		ServiceURL: "http://localhost:8001/api/v1",
	})
	if err != nil || gen == nil {
		t.Errorf("service backend: %v", err)
	}

	if _, err := NewGenerator(GeneratorConfig{Backend: "bogus"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
