package services

import (
	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driving"
)

// Ensure ToolRegistry implements the interface.
var _ driving.ToolRegistry = (*ToolRegistry)(nil)

const searchToolDescription = "Search the web using Perplexity AI. " +
	"Returns an answer grounded in current web sources together with the list of cited URLs. " +
	"Use search_recency_filter to restrict sources to the last month, week, day or hour."

// ToolRegistry holds the static tool manifest.
// It has no state and is safe for concurrent use.
type ToolRegistry struct{}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// ListTools returns the manifest. A new slice and schema are built on every
// call so callers cannot alter what later callers observe.
func (r *ToolRegistry) ListTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{searchTool()}
}

// Lookup returns the descriptor registered under name.
func (r *ToolRegistry) Lookup(name string) (domain.ToolDescriptor, bool) {
	for _, tool := range r.ListTools() {
		if tool.Name == name {
			return tool, true
		}
	}
	return domain.ToolDescriptor{}, false
}

func searchTool() domain.ToolDescriptor {
	filters := domain.RecencyFilters()
	enum := make([]any, len(filters))
	for i, f := range filters {
		enum[i] = f.String()
	}

	return domain.ToolDescriptor{
		Name:        domain.SearchToolName,
		Description: searchToolDescription,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
				"search_recency_filter": map[string]any{
					"type":        "string",
					"enum":        enum,
					"description": "Only use sources published within this window",
				},
			},
			"required": []any{"query"},
		},
	}
}
