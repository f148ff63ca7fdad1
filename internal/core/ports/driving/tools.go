package driving

import "github.com/custodia-labs/perplexity-mcp/internal/core/domain"

// ToolRegistry advertises the tools a client may invoke.
type ToolRegistry interface {
	// ListTools returns the tool manifest. The result is identical on every call
	// and callers may modify the returned slice freely.
	ListTools() []domain.ToolDescriptor

	// Lookup returns the descriptor registered under name.
	Lookup(name string) (domain.ToolDescriptor, bool)
}
