// Package mcp provides the MCP (Model Context Protocol) server adapter.
// It exposes the Perplexity-backed search tool to AI assistants over
// stdio or an event-stream HTTP binding.
package mcp

import (
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingToolRegistry is returned when the tool registry is not provided.
var ErrMissingToolRegistry = errors.New("mcp: tool registry is required")

// ErrHandlerClosed is returned by the SSE handler after Close.
var ErrHandlerClosed = errors.New("mcp: handler closed")

// JSON-RPC error codes.
const codeMethodNotFound int64 = -32601

// methodNotFound is the protocol error for a tool name outside the registry.
func methodNotFound(name string) error {
	return &jsonrpc.Error{
		Code:    codeMethodNotFound,
		Message: fmt.Sprintf("%v: %s", domain.ErrUnknownTool, name),
	}
}
