package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/store"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantSuccess    bool
		wantValue      any
		wantConfidence audit.Confidence
	}{
		{
			name:           "plain json",
			body:           `{"suggestedValue":"Mediterranean","reasoning":"verified","confidence":"high"}`,
			wantSuccess:    true,
			wantValue:      "Mediterranean",
			wantConfidence: audit.ConfidenceHigh,
		},
		{
			name: "markdown fenced",
			body: "Here is the result:\n```json\n" +
				`{"suggestedValue":"Mediterranean","reasoning":"inferred","confidence":"limited"}` +
				"\n```\nLet me know if you need more.",
			wantSuccess:    true,
			wantValue:      "Mediterranean",
			wantConfidence: audit.ConfidenceLimited,
		},
		{
			name:           "null value means no suggestion",
			body:           `{"suggestedValue":null,"reasoning":"could not verify","confidence":"low"}`,
			wantSuccess:    false,
			wantValue:      nil,
			wantConfidence: audit.ConfidenceLow,
		},
		{
			name:           "unrecognized confidence falls back to limited",
			body:           `{"suggestedValue":"42","confidence":"certain"}`,
			wantSuccess:    true,
			wantValue:      "42",
			wantConfidence: audit.ConfidenceLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult("anthropic", tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantValue, result.SuggestedValue)
			assert.Equal(t, tt.wantConfidence, result.Confidence)
			assert.NotEmpty(t, result.Reasoning)
		})
	}
}

func TestParseResultNoJSON(t *testing.T) {
	_, err := ParseResult("anthropic", "I'm sorry, I cannot help with that.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON")
}

type staticPatterns struct {
	records []store.Record
}

func (s *staticPatterns) SimilarRecords(string, string, string) []store.Record {
	return s.records
}

func TestPrompt(t *testing.T) {
	catalog, err := fields.New()
	require.NoError(t, err)

	record := store.Record{
		"id":        "town-1",
		"town_name": "Alicante",
		"country":   "Spain",
	}

	prompt := Prompt(catalog, record, "climate", nil, nil)

	assert.Contains(t, prompt, "Name: Alicante")
	assert.Contains(t, prompt, "Country: Spain")
	assert.Contains(t, prompt, "State/Region: N/A")
	assert.Contains(t, prompt, "FIELD: climate")
	assert.Contains(t, prompt, "Current value: NULL/Empty")
	assert.Contains(t, prompt, "What is the climate type in Alicante, Spain?",
		"search template placeholders are substituted")
	assert.Contains(t, prompt, "single climate classification word")
	assert.Contains(t, prompt, "No examples found in database")
	assert.Contains(t, prompt, `"suggestedValue"`)
}

func TestPromptWithPatterns(t *testing.T) {
	catalog, err := fields.New()
	require.NoError(t, err)

	record := store.Record{"id": "town-1", "town_name": "Alicante", "country": "Spain"}
	patterns := &staticPatterns{records: []store.Record{
		{"id": "town-2", "town_name": "Valencia", "country": "Spain", "climate": "Mediterranean"},
		{"id": "town-3", "town_name": "Malaga", "country": "Spain"}, // no value, excluded
	}}

	prompt := Prompt(catalog, record, "climate", "med", patterns)

	assert.Contains(t, prompt, "Found 1 examples in our database")
	assert.Contains(t, prompt, `- Valencia, Spain: "Mediterranean"`)
	assert.NotContains(t, prompt, "Malaga")
	assert.Contains(t, prompt, "Current value: med")
}

func TestPromptUnknownFieldFallbackTask(t *testing.T) {
	catalog, err := fields.New()
	require.NoError(t, err)

	record := store.Record{"id": "town-1", "town_name": "Alicante", "country": "Spain"}
	prompt := Prompt(catalog, record, "timezone", nil, nil)

	assert.Contains(t, prompt, `Research and provide accurate data for the field "timezone"`)
}
