package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
	"github.com/custodia-labs/perplexity-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SearchGateway = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultTimeout = 120 * time.Second
)

// ErrMissingModel is returned when the server configuration names no valid model.
var ErrMissingModel = errors.New("perplexity: a valid model is required")

// Config holds transport settings for the Perplexity client.
type Config struct {
	// BaseURL is the API base URL (default: https://api.perplexity.ai).
	BaseURL string

	// Timeout bounds each request including reading the body (default: 120s).
	Timeout time.Duration

	// HTTPClient overrides the client used for requests. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the Perplexity chat-completions endpoint.
// It is safe for concurrent use.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       domain.Model
	maxTokens   int
	temperature float64
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []chatCompletionMsg `json:"messages"`
	MaxTokens           int                 `json:"max_tokens"`
	Temperature         float64             `json:"temperature"`
	SearchRecencyFilter string              `json:"search_recency_filter,omitempty"`
}

// chatCompletionMsg is a chat message.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions success format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// errorResponse covers the error bodies the API returns. The error field
// is either a plain string or an object carrying a message.
type errorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// NewClient creates a new Perplexity client for the given server configuration.
func NewClient(server domain.ServerConfig, cfg Config) (*Client, error) {
	if !server.Model.IsValid() {
		return nil, ErrMissingModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:      httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      server.APIKey,
		model:       server.Model,
		maxTokens:   server.MaxTokens,
		temperature: server.Temperature,
	}, nil
}

// Model returns the model sent with every request.
func (c *Client) Model() domain.Model {
	return c.model
}

// Search sends a single chat completion request carrying req.Query as the user message.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	reqBody := chatCompletionRequest{
		Model: c.model.String(),
		Messages: []chatCompletionMsg{
			{Role: "user", Content: req.Query},
		},
		MaxTokens:           c.maxTokens,
		Temperature:         c.temperature,
		SearchRecencyFilter: req.RecencyFilter.String(),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.Debug("POST %s/chat/completions model=%s", c.baseURL, c.model)
	start := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.SearchResult{}, &domain.UpstreamError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SearchResult{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("read response: %v", err),
			Err:        err,
		}
	}
	logger.Debug("Response status %d in %v (%d bytes)", resp.StatusCode, time.Since(start), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.SearchResult{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return domain.SearchResult{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %v", err),
			Err:        err,
		}
	}

	if len(chatResp.Choices) == 0 {
		return domain.SearchResult{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "no response choices returned",
			Err:        domain.ErrEmptyResponse,
		}
	}

	citations := chatResp.Citations
	if citations == nil {
		citations = []string{}
	}

	return domain.SearchResult{
		Content:   chatResp.Choices[0].Message.Content,
		Citations: citations,
	}, nil
}

// errorMessage extracts the most specific reason from an error body.
// Priority: error (string, or object message), then message, then the status line.
func errorMessage(status int, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := rawErrorText(errResp.Error); msg != "" {
			return msg
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return fmt.Sprintf("request failed with status code %d", status)
}

func rawErrorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Type
	}
	return ""
}
