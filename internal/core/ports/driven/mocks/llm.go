package mocks

import (
	"context"
	"sync"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Generator = (*MockGenerator)(nil)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	mu sync.Mutex

	Response      string
	GenerateErr   error
	GenerateCalls int
	LastPrompt    string
	LastModel     string
	LastOptions   map[string]any
}

// NewMockGenerator creates a new MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Response: "mock answer"}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt, model string, options map[string]any) (*domain.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls++
	m.LastPrompt = prompt
	m.LastModel = model
	m.LastOptions = options
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}

	usedModel := model
	if usedModel == "" {
		usedModel = m.Model()
	}
	reason := "stop"
	return &domain.Generation{
		Text:  m.Response,
		Model: usedModel,
		Usage: domain.Usage{
			PromptTokens:     len(prompt) / 4,
			CompletionTokens: len(m.Response) / 4,
			TotalTokens:      (len(prompt) + len(m.Response)) / 4,
		},
		FinishReason: &reason,
	}, nil
}

func (m *MockGenerator) Model() string {
	return "mock-llm"
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerator) Close() error {
	return nil
}
