// Package domain defines the core business entities for the Perplexity MCP server.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ServerConfig: Model choice, completion limits and the gateway credential
//   - SearchRequest: A validated query with an optional recency window
//   - SearchResult: Answer text plus ordered citations
//   - ToolDescriptor: The manifest entry advertised during discovery
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
