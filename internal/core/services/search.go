package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService validates search requests and forwards them to the gateway.
// It holds no per-request state and is safe for concurrent use.
type SearchService struct {
	gateway driven.SearchGateway
}

// NewSearchService creates a new search service.
func NewSearchService(gateway driven.SearchGateway) *SearchService {
	return &SearchService{gateway: gateway}
}

// Search validates req, performs a single gateway call and normalises the result.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", req.Query)
	if req.RecencyFilter != domain.RecencyNone {
		logger.Debug("Recency filter: %s", req.RecencyFilter)
	}

	if err := req.Validate(); err != nil {
		logger.Debug("Rejected request: %v", err)
		return domain.SearchResult{}, err
	}
	if s.gateway == nil {
		return domain.SearchResult{}, fmt.Errorf("search: %w", ErrNoGateway)
	}

	result, err := s.gateway.Search(ctx, req)
	if err != nil {
		logger.Debug("Gateway failed: %v", err)
		return domain.SearchResult{}, err
	}

	// Citations are always present in the response payload.
	if result.Citations == nil {
		result.Citations = []string{}
	}

	logger.Debug("Answer: %d chars, %d citations", len(result.Content), len(result.Citations))
	return result, nil
}
