// Package research builds the prompts sent to AI research collaborators
// and parses their JSON answers. Backends live in the subpackages; they
// share this package so that a field researched through different
// providers sees the same instructions.
package research

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/store"
	"github.com/townscout/curator/pkg/suggest"
)

// PatternSource supplies example records that already have data for a
// field, so the collaborator can match the catalog's existing formats.
// May be nil; research then proceeds without examples.
type PatternSource interface {
	SimilarRecords(fieldName, country, excludeID string) []store.Record
}

// jsonObject extracts the first JSON object from a response that may wrap
// it in markdown fences or prose.
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// rawResult is the collaborator's JSON answer shape.
type rawResult struct {
	SuggestedValue any    `json:"suggestedValue"`
	Reasoning      string `json:"reasoning"`
	Confidence     string `json:"confidence"`
}

// Prompt renders the research instruction for one field.
func Prompt(catalog *fields.Catalog, record store.Record, fieldName string, currentValue any, patterns PatternSource) string {
	name, _ := record["town_name"].(string)
	country, _ := record["country"].(string)
	region, _ := record["state_code"].(string)
	if region == "" {
		region = "N/A"
	}

	task := catalog.SearchTemplate(fieldName)
	if task == "" {
		task = fmt.Sprintf("Research and provide accurate data for the field %q. Follow the format/pattern from similar records below.", fieldName)
	} else {
		task = strings.NewReplacer(
			"{town_name}", name,
			"{country}", country,
		).Replace(task)
	}

	current := "NULL/Empty"
	if currentValue != nil && strings.TrimSpace(fmt.Sprint(currentValue)) != "" {
		current = fmt.Sprint(currentValue)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a data normalization expert for a retirement town database.\n\n")
	fmt.Fprintf(&b, "TOWN INFORMATION:\n- Name: %s\n- Country: %s\n- State/Region: %s\n\n", name, country, region)
	fmt.Fprintf(&b, "FIELD: %s\nCurrent value: %s\n\n", fieldName, current)
	fmt.Fprintf(&b, "YOUR TASK:\n%s\n\n", task)
	fmt.Fprintf(&b, "PATTERN ANALYSIS FROM SIMILAR TOWNS:\n%s\n\n", patternAnalysis(record, fieldName, country, patterns))

	if format := catalog.ExpectedFormat(fieldName); format != "" {
		fmt.Fprintf(&b, "EXPECTED FORMAT:\n%s\n\n", format)
	}

	b.WriteString(`NORMALIZATION RULES:
1. Follow the exact format/pattern from similar towns
2. Maintain data consistency across all towns
3. If the current value already matches the pattern and looks correct, return it UNCHANGED
4. For empty/NULL values, research and provide normalized data
5. Rate confidence: high (verified data), limited (inferred), low (uncertain)
6. Do not suggest changes unless there is a real improvement to be made
7. Numeric fields: return the number only, no units
8. Return null only if the data cannot be reliably determined

RESPONSE FORMAT (JSON only):
{
  "suggestedValue": "normalized value or null",
  "reasoning": "why this value (reference pattern/research)",
  "confidence": "high/limited/low"
}`)

	return b.String()
}

// patternAnalysis summarizes example records for the prompt.
func patternAnalysis(record store.Record, fieldName, country string, patterns PatternSource) string {
	if patterns == nil {
		return "No examples found in database. Research freely following the expected format."
	}

	similar := patterns.SimilarRecords(fieldName, country, record.ID())
	examples := make([]string, 0, len(similar))
	for _, r := range similar {
		value, ok := r.Field(fieldName)
		if !ok || value == nil {
			continue
		}
		name, _ := r["town_name"].(string)
		exampleCountry, _ := r["country"].(string)
		examples = append(examples, fmt.Sprintf("- %s, %s: %q", name, exampleCountry, fmt.Sprint(value)))
	}

	if len(examples) == 0 {
		return "No examples found in database. Research freely following the expected format."
	}

	return fmt.Sprintf(`Found %d examples in our database:
%s

Study these examples carefully: count of items, format and structure,
level of detail. Maintain consistency with these patterns.`, len(examples), strings.Join(examples, "\n"))
}

// ParseResult turns a collaborator response body into a suggest.Result.
func ParseResult(provider, text string) (*suggest.Result, error) {
	match := jsonObject.FindString(text)
	if match == "" {
		return nil, errors.NewParseError("json", provider, "response did not contain a JSON object", nil)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, errors.NewParseError("json", provider, err.Error(), err)
	}

	confidence := audit.Confidence(strings.ToLower(strings.TrimSpace(raw.Confidence)))
	switch confidence {
	case audit.ConfidenceHigh, audit.ConfidenceLimited, audit.ConfidenceLow:
	default:
		confidence = audit.ConfidenceLimited
	}

	reasoning := raw.Reasoning
	if reasoning == "" {
		reasoning = "AI-generated suggestion"
	}

	return &suggest.Result{
		Success:        raw.SuggestedValue != nil,
		SuggestedValue: raw.SuggestedValue,
		Confidence:     confidence,
		Reasoning:      reasoning,
	}, nil
}
