// Package anthropic provides a research collaborator backed by the
// Anthropic Messages API. Each field becomes one request; a small, cheap
// model suffices for field research.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/townscout/curator/internal/research"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/logging"
	"github.com/townscout/curator/pkg/store"
	"github.com/townscout/curator/pkg/suggest"
)

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	defaultModel    = "claude-3-haiku-20240307"
	apiVersion      = "2023-06-01"
	maxTokens       = 1024
)

// Client implements suggest.Researcher over the Anthropic API.
type Client struct {
	catalog  *fields.Catalog
	apiKey   string
	model    string
	endpoint string
	patterns research.PatternSource
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model used for research calls.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithEndpoint overrides the API endpoint, for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithPatternSource supplies example records for prompt pattern analysis.
func WithPatternSource(patterns research.PatternSource) Option {
	return func(c *Client) { c.patterns = patterns }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates an Anthropic research client.
func New(catalog *fields.Catalog, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyRequired
	}
	c := &Client{
		catalog:  catalog,
		apiKey:   apiKey,
		model:    defaultModel,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request and response shapes for the Messages API.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Research implements suggest.Researcher.
func (c *Client) Research(ctx context.Context, record store.Record, fieldName string, currentValue any) (*suggest.Result, error) {
	prompt := research.Prompt(c.catalog, record, fieldName, currentValue, c.patterns)

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding research request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating research request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{Provider: "anthropic", Endpoint: c.endpoint, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.APIError{Provider: "anthropic", Endpoint: c.endpoint, Message: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		var parsed messagesResponse
		if json.Unmarshal(data, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, errors.NewAPIError("anthropic", resp.StatusCode, msg)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.NewParseError("json", "anthropic", err.Error(), err)
	}
	if len(parsed.Content) == 0 {
		return nil, errors.NewParseError("json", "anthropic", "empty response content", nil)
	}

	logging.Ctx(ctx).Debug().
		Str("field", fieldName).
		Str("model", c.model).
		Msg("Research response received")

	return research.ParseResult("anthropic", parsed.Content[0].Text)
}
