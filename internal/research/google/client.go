// Package google provides a research collaborator backed by the Gemini
// API via google.golang.org/genai.
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/townscout/curator/internal/research"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/logging"
	"github.com/townscout/curator/pkg/store"
	"github.com/townscout/curator/pkg/suggest"
)

const defaultModel = "gemini-2.0-flash"

// Client implements suggest.Researcher over the Gemini API.
type Client struct {
	catalog  *fields.Catalog
	client   *genai.Client
	model    string
	patterns research.PatternSource
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model used for research calls.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithPatternSource supplies example records for prompt pattern analysis.
func WithPatternSource(patterns research.PatternSource) Option {
	return func(c *Client) { c.patterns = patterns }
}

// New creates a Gemini research client.
func New(ctx context.Context, catalog *fields.Catalog, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyRequired
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	c := &Client{
		catalog: catalog,
		client:  genaiClient,
		model:   defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Research implements suggest.Researcher.
func (c *Client) Research(ctx context.Context, record store.Record, fieldName string, currentValue any) (*suggest.Result, error) {
	prompt := research.Prompt(c.catalog, record, fieldName, currentValue, c.patterns)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, &errors.APIError{Provider: "google", Message: "generate content failed", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.NewParseError("json", "google", "empty response content", nil)
	}

	logging.Ctx(ctx).Debug().
		Str("field", fieldName).
		Str("model", c.model).
		Msg("Research response received")

	return research.ParseResult("google", text)
}
