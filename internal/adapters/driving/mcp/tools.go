package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers every advertised tool with the MCP server.
// All invocations are routed through the dispatcher.
func (s *Server) registerTools() {
	for _, tool := range s.ports.Tools.ListTools() {
		s.server.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}, s.handleCallTool)
	}
}

// handleCallTool handles a tools/call request for any registered tool.
func (s *Server) handleCallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatcher.Handle(ctx, req.Params.Name, req.Params.Arguments)
}
