package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Name is the implementation name reported during initialisation.
const Name = "perplexity-mcp"

const shutdownTimeout = 5 * time.Second

// listen is replaced in tests.
var listen = net.Listen

// Server is the MCP server for Perplexity search.
// A single Server is shared by every connection regardless of transport.
type Server struct {
	ports      *Ports
	dispatcher *Dispatcher
	server     *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	dispatcher, err := NewDispatcher(ports)
	if err != nil {
		return nil, err
	}

	impl := &mcp.Implementation{
		Name:    Name,
		Version: Version,
	}

	s := &Server{
		ports:      ports,
		dispatcher: dispatcher,
		server:     mcp.NewServer(impl, nil),
	}

	s.server.AddReceivingMiddleware(dispatcher.middleware)
	s.registerTools()

	return s, nil
}

// Serve runs the server over a single persistent transport.
// It blocks until the peer disconnects or the context is cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// Connect starts a session over transport without blocking.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// RunSSE serves the event-stream binding on addr.
// onReady, if non-nil, is called with the bound address once the listener is open.
// It blocks until the context is cancelled, then closes every session and
// shuts the HTTP server down.
func (s *Server) RunSSE(ctx context.Context, addr string, onReady func(net.Addr)) error {
	ln, err := listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	handler := NewSSEHandler(s)
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	if onReady != nil {
		onReady(ln.Addr())
	}

	select {
	case err := <-serveErr:
		handler.Close() //nolint:errcheck
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down, closing %d session(s)", handler.SessionCount())
	handler.Close() //nolint:errcheck

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
