package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townscout/curator/pkg/audit"
	curatorerrors "github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/store"
)

func testCatalog(t *testing.T) *fields.Catalog {
	t.Helper()
	catalog, err := fields.New()
	require.NoError(t, err)
	return catalog
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(testCatalog(t), "")
	require.ErrorIs(t, err, curatorerrors.ErrAPIKeyRequired)
}

func TestResearch(t *testing.T) {
	var gotReq messagesRequest
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := messagesResponse{Content: []contentBlock{{
			Type: "text",
			Text: `{"suggestedValue":"Mediterranean","reasoning":"verified against climate data","confidence":"high"}`,
		}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := New(testCatalog(t), "test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	record := store.Record{"id": "town-1", "town_name": "Alicante", "country": "Spain"}
	result, err := client.Research(context.Background(), record, "climate", nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Mediterranean", result.SuggestedValue)
	assert.Equal(t, audit.ConfidenceHigh, result.Confidence)

	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, apiVersion, gotHeaders.Get("anthropic-version"))
	assert.Equal(t, defaultModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "Alicante")
	assert.Contains(t, gotReq.Messages[0].Content, "FIELD: climate")
}

func TestResearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	client, err := New(testCatalog(t), "test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = client.Research(context.Background(), store.Record{"id": "town-1"}, "climate", nil)
	require.Error(t, err)
	assert.True(t, curatorerrors.IsRateLimited(err), "429 maps to the rate-limit sentinel, got %v", err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestResearchMalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client, err := New(testCatalog(t), "test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = client.Research(context.Background(), store.Record{"id": "town-1"}, "climate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response content")
}

func TestResearchModelOverride(t *testing.T) {
	var gotReq messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"suggestedValue\":null}"}]}`))
	}))
	defer server.Close()

	client, err := New(testCatalog(t), "test-key",
		WithEndpoint(server.URL),
		WithModel("claude-3-5-sonnet-20241022"))
	require.NoError(t, err)

	_, err = client.Research(context.Background(), store.Record{"id": "town-1"}, "climate", nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", gotReq.Model)
}
