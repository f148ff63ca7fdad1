package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/services"
)

// echoSearchService answers with the query it received.
type echoSearchService struct{}

func (echoSearchService) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	return domain.SearchResult{Content: "echo: " + req.Query, Citations: []string{}}, nil
}

func newSSETestServer(t *testing.T) (*SSEHandler, *httptest.Server) {
	t.Helper()
	server, err := NewServer(&Ports{Search: echoSearchService{}, Tools: services.NewToolRegistry()})
	require.NoError(t, err)

	handler := NewSSEHandler(server)
	srv := httptest.NewServer(handler)
	// Cleanups run last-in first-out: sessions end before the server closes.
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = handler.Close() })
	return handler, srv
}

func connectSSE(t *testing.T, baseURL string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "sse-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &mcp.SSEClientTransport{Endpoint: baseURL + "/sse"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestSSEHandler_ListAndCall(t *testing.T) {
	handler, srv := newSSETestServer(t)
	cs := connectSSE(t, srv.URL)
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "search", tools.Tools[0].Name)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "hello"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"echo: hello","citations":[]}`, callText(t, res))
	assert.Equal(t, 1, handler.SessionCount())
}

// TestSSEHandler_ConcurrentClients tests that simultaneous clients receive only their own responses
func TestSSEHandler_ConcurrentClients(t *testing.T) {
	handler, srv := newSSETestServer(t)

	const clients = 3
	sessions := make([]*mcp.ClientSession, clients)
	for i := range sessions {
		sessions[i] = connectSSE(t, srv.URL)
	}
	assert.Equal(t, clients, handler.SessionCount())

	var wg sync.WaitGroup
	for i, cs := range sessions {
		wg.Add(1)
		go func(i int, cs *mcp.ClientSession) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				query := fmt.Sprintf("client-%d-call-%d", i, j)
				res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
					Name:      "search",
					Arguments: map[string]any{"query": query},
				})
				if !assert.NoError(t, err) {
					return
				}
				var payload searchPayload
				text := res.Content[0].(*mcp.TextContent).Text
				if assert.NoError(t, json.Unmarshal([]byte(text), &payload)) {
					assert.Equal(t, "echo: "+query, payload.Content)
				}
			}
		}(i, cs)
	}
	wg.Wait()
}

func TestSSEHandler_SessionRemovedOnDisconnect(t *testing.T) {
	handler, srv := newSSETestServer(t)

	client := mcp.NewClient(&mcp.Implementation{Name: "sse-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &mcp.SSEClientTransport{Endpoint: srv.URL + "/sse"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, handler.SessionCount())

	require.NoError(t, cs.Close())

	assert.Eventually(t, func() bool { return handler.SessionCount() == 0 },
		5*time.Second, 10*time.Millisecond)
}

func TestSSEHandler_Messages(t *testing.T) {
	_, srv := newSSETestServer(t)

	t.Run("missing session id", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown session id", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/messages?sessionId=nope", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/messages")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestSSEHandler_Health(t *testing.T) {
	_, srv := newSSETestServer(t)
	connectSSE(t, srv.URL)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Sessions)
}

func TestSSEHandler_Close(t *testing.T) {
	handler, srv := newSSETestServer(t)
	connectSSE(t, srv.URL)
	require.Equal(t, 1, handler.SessionCount())

	require.NoError(t, handler.Close())

	assert.Eventually(t, func() bool { return handler.SessionCount() == 0 },
		5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(srv.URL + "/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_RunSSE(t *testing.T) {
	server, err := NewServer(&Ports{Search: echoSearchService{}, Tools: services.NewToolRegistry()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.RunSSE(ctx, "127.0.0.1:0", func(addr net.Addr) { ready <- addr })
	}()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-errCh:
		t.Fatalf("RunSSE returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunSSE did not become ready")
	}

	baseURL := "http://" + addr.String()
	cs := connectSSE(t, baseURL)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "ping"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("RunSSE did not shut down")
	}
}

func TestServer_RunSSE_ListenFailure(t *testing.T) {
	orig := listen
	defer func() { listen = orig }()
	listen = func(string, string) (net.Listener, error) {
		return nil, fmt.Errorf("address already in use")
	}

	server, err := NewServer(&Ports{Search: echoSearchService{}, Tools: services.NewToolRegistry()})
	require.NoError(t, err)

	called := false
	err = server.RunSSE(context.Background(), ":3001", func(net.Addr) { called = true })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.False(t, called)
}
