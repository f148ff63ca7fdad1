package mcp

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// Routes of the event-stream binding.
const (
	ssePath      = "/sse"
	messagesPath = "/messages"
	healthPath   = "/health"

	sessionIDParam = "sessionId"
)

// sseSession is one event-stream connection and its protocol session.
type sseSession struct {
	id        string
	transport *mcp.SSEServerTransport
	session   *mcp.ServerSession
}

// SSEHandler serves the event-stream + POST binding.
//
// Every GET /sse opens an independent session identified by a random token.
// The token is announced to the client in the endpoint event and must accompany
// each POST /messages, so concurrent clients never share a transport.
type SSEHandler struct {
	server *Server
	router chi.Router

	mu       sync.Mutex
	sessions map[string]*sseSession
	closed   bool
}

// NewSSEHandler creates the HTTP handler for s.
func NewSSEHandler(s *Server) *SSEHandler {
	h := &SSEHandler{
		server:   s,
		sessions: make(map[string]*sseSession),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if logger.IsVerbose() {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.New(logger.Output(), "", log.LstdFlags),
			NoColor: true,
		}))
	}
	r.Use(middleware.Recoverer)

	r.Get(ssePath, h.handleSSE)
	r.Post(messagesPath, h.handleMessage)
	r.Get(healthPath, h.handleHealth)

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// SessionCount returns the number of open sessions.
func (h *SSEHandler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every open session. Subsequent event-stream requests are refused.
func (h *SSEHandler) Close() error {
	h.mu.Lock()
	h.closed = true
	open := make([]*mcp.ServerSession, 0, len(h.sessions))
	for _, sess := range h.sessions {
		if sess.session != nil {
			open = append(open, sess.session)
		}
	}
	h.mu.Unlock()

	for _, ss := range open {
		ss.Close() //nolint:errcheck
	}
	return nil
}

func (h *SSEHandler) handleSSE(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	sess := &sseSession{
		id: id,
		transport: &mcp.SSEServerTransport{
			Endpoint: messagesPath + "?" + sessionIDParam + "=" + id,
			Response: w,
		},
	}

	// Register before connecting: the endpoint event is written during
	// Connect and the client may POST as soon as it arrives.
	if err := h.add(sess); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ss, err := h.server.Connect(r.Context(), sess.transport)
	if err != nil {
		logger.Error("SSE session %s failed to connect: %v", id, err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	defer ss.Close() //nolint:errcheck

	if !h.attach(id, ss) {
		return
	}
	logger.Debug("SSE session %s opened from %s", id, r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		ss.Wait() //nolint:errcheck
		close(done)
	}()

	select {
	case <-r.Context().Done():
	case <-done:
	}
	logger.Debug("SSE session %s closed", id)
}

func (h *SSEHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(sessionIDParam)
	if id == "" {
		http.Error(w, "missing "+sessionIDParam, http.StatusBadRequest)
		return
	}

	sess, ok := h.get(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	sess.transport.ServeHTTP(w, r)
}

func (h *SSEHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": h.SessionCount(),
	})
}

func (h *SSEHandler) add(sess *sseSession) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandlerClosed
	}
	h.sessions[sess.id] = sess
	return nil
}

// attach records the protocol session. It returns false if Close ran while
// the session was connecting.
func (h *SSEHandler) attach(id string, ss *mcp.ServerSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if sess, ok := h.sessions[id]; ok {
		sess.session = ss
	}
	return true
}

func (h *SSEHandler) get(id string) (*sseSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	return sess, ok
}

func (h *SSEHandler) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}
