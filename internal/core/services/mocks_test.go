package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driven"
)

// mockGateway implements driven.SearchGateway for testing.
type mockGateway struct {
	mu       sync.Mutex
	result   domain.SearchResult
	err      error
	requests []domain.SearchRequest
}

var _ driven.SearchGateway = (*mockGateway)(nil)

func (m *mockGateway) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return domain.SearchResult{}, m.err
	}
	return m.result, nil
}

func (m *mockGateway) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
