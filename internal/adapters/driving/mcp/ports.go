package mcp

import (
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers search tool invocations.
	Search driving.SearchService

	// Tools advertises the tool manifest.
	Tools driving.ToolRegistry
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Tools == nil {
		return ErrMissingToolRegistry
	}
	return nil
}
