package driven

import (
	"context"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
)

// SearchGateway performs a search against the upstream answer engine.
//
// Implementations make a single attempt per call and never retry.
// Every failure to obtain an answer, including transport errors and
// non-success responses, is reported as *domain.UpstreamError so callers
// can render it to the client. Any other error is an internal fault.
type SearchGateway interface {
	// Search sends req upstream and returns the first answer with its citations.
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}
