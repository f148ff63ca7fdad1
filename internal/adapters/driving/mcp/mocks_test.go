package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	mu       sync.Mutex
	result   domain.SearchResult
	err      error
	requests []domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.result, m.err
}

func (m *mockSearchService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockSearchService) lastRequest() domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.SearchRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// mockToolRegistry is a mock implementation of driving.ToolRegistry.
type mockToolRegistry struct {
	tools []domain.ToolDescriptor
}

func (m *mockToolRegistry) ListTools() []domain.ToolDescriptor {
	return append([]domain.ToolDescriptor(nil), m.tools...)
}

func (m *mockToolRegistry) Lookup(name string) (domain.ToolDescriptor, bool) {
	for _, tool := range m.tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return domain.ToolDescriptor{}, false
}
