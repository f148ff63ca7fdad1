package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

const methodCallTool = "tools/call"

// Result prefixes rendered to the client.
const (
	invalidArgumentsPrefix = "Invalid arguments: "
	upstreamErrorPrefix    = "Perplexity API error: "
)

// toolHandler handles one invocation of a named tool.
type toolHandler func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

// Dispatcher routes tool invocations to their handlers.
// It holds no per-connection state and is shared by every session.
type Dispatcher struct {
	tools    driving.ToolRegistry
	search   driving.SearchService
	handlers map[string]toolHandler
}

// NewDispatcher creates a dispatcher over the given ports.
func NewDispatcher(ports *Ports) (*Dispatcher, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		tools:  ports.Tools,
		search: ports.Search,
	}
	d.handlers = map[string]toolHandler{
		domain.SearchToolName: d.handleSearch,
	}
	return d, nil
}

// Known reports whether name is both advertised and handled.
func (d *Dispatcher) Known(name string) bool {
	if _, ok := d.tools.Lookup(name); !ok {
		return false
	}
	_, ok := d.handlers[name]
	return ok
}

// Handle invokes the tool called name.
//
// Unknown names yield a MethodNotFound protocol error. Caller and upstream
// failures are reported inside the result with IsError set. Any other error
// is returned for the SDK to send as a protocol error.
func (d *Dispatcher) Handle(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	if !d.Known(name) {
		return nil, methodNotFound(name)
	}
	return d.handlers[name](ctx, args)
}

// middleware rejects unknown tools before the SDK resolves them and traces
// every method in verbose mode.
func (d *Dispatcher) middleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method == methodCallTool {
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil && !d.Known(call.Params.Name) {
				logger.Warn("Rejected call to unknown tool %q", call.Params.Name)
				return nil, methodNotFound(call.Params.Name)
			}
		}

		start := time.Now()
		res, err := next(ctx, method, req)
		if err != nil {
			logger.Debug("%s failed after %v: %v", method, time.Since(start), err)
		} else {
			logger.Debug("%s handled in %v", method, time.Since(start))
		}
		return res, err
	}
}

// searchArguments is the decoded argument object of the search tool.
// Pointer fields distinguish absent keys from empty values.
type searchArguments struct {
	Query               *string `json:"query"`
	SearchRecencyFilter *string `json:"search_recency_filter"`
}

// searchPayload is the JSON document returned in the text block.
type searchPayload struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
}

func (d *Dispatcher) handleSearch(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	req, err := decodeSearchArguments(args)
	if err != nil {
		return invalidArguments(err), nil
	}

	result, err := d.search.Search(ctx, req)
	if err != nil {
		var verr *domain.ValidationError
		var uerr *domain.UpstreamError
		switch {
		case errors.As(err, &verr):
			return invalidArguments(verr), nil
		case errors.As(err, &uerr):
			logger.Warn("Upstream search failed: %s", uerr.Message)
			return errorResult(upstreamErrorPrefix + uerr.Message), nil
		default:
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	payload := searchPayload{Content: result.Content, Citations: result.Citations}
	if payload.Citations == nil {
		payload.Citations = []string{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// decodeSearchArguments converts untrusted arguments into a validated request.
func decodeSearchArguments(raw json.RawMessage) (domain.SearchRequest, error) {
	var args searchArguments
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return domain.SearchRequest{}, argumentDecodeError(err)
		}
	}

	if args.Query == nil {
		return domain.SearchRequest{}, &domain.ValidationError{Field: "query", Reason: "is required"}
	}
	req := domain.SearchRequest{Query: *args.Query}

	if args.SearchRecencyFilter != nil {
		f, err := domain.ParseRecencyFilter(*args.SearchRecencyFilter)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		req.RecencyFilter = f
	}

	if err := req.Validate(); err != nil {
		return domain.SearchRequest{}, err
	}
	return req, nil
}

func argumentDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &domain.ValidationError{Field: typeErr.Field, Reason: "must be a string"}
	}
	return &domain.ValidationError{Reason: "arguments must be a JSON object"}
}

func invalidArguments(err error) *mcp.CallToolResult {
	return errorResult(invalidArgumentsPrefix + err.Error())
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
