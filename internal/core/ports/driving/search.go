package driving

import (
	"context"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
)

// SearchService answers search requests on behalf of protocol adapters.
type SearchService interface {
	// Search validates the request and performs exactly one upstream search.
	// Validation failures wrap domain.ErrInvalidInput; gateway failures are *domain.UpstreamError.
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}
