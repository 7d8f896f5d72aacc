// Package suggest generates prioritized update suggestions for record
// fields by consulting an external research collaborator, one field at a
// time. Individual collaborator failures never abort the batch; they are
// recorded as suggestions with no proposed value and a reason.
package suggest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/townscout/curator/pkg/analyze"
	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/logging"
	"github.com/townscout/curator/pkg/store"
)

// Result is the research collaborator's answer for one field.
type Result struct {
	Success        bool             `json:"success"`
	SuggestedValue any              `json:"suggested_value"`
	Confidence     audit.Confidence `json:"confidence"`
	Reasoning      string           `json:"reasoning"`
}

// Researcher is the external research collaborator. Each call researches
// one field and is independently failable. Rate limiting, retries, and
// timeouts are the implementation's responsibility.
type Researcher interface {
	Research(ctx context.Context, record store.Record, fieldName string, currentValue any) (*Result, error)
}

// Suggestion is an ephemeral proposed change for one field.
type Suggestion struct {
	Field          string           `json:"field_name"`
	CurrentValue   any              `json:"current_value"`
	SuggestedValue any              `json:"suggested_value"` // nil when research failed
	Confidence     audit.Confidence `json:"confidence"`
	Reason         string           `json:"reason"`
	Weight         int              `json:"priority"`
	Selected       bool             `json:"selected"`
}

// Progress reports which field is about to be researched.
type Progress struct {
	Current int
	Total   int
	Field   string
}

// ProgressFunc receives ordered progress updates, one before each field.
type ProgressFunc func(Progress)

// Validator checks a proposed value for one field. A non-nil error turns
// the proposal into a null suggestion carrying the error text.
type Validator func(value any) error

// Generator produces suggestions for a set of fields.
type Generator struct {
	catalog    *fields.Catalog
	researcher Researcher
	validators map[string]Validator
}

// New creates a Generator. Default validators cover fields with known
// sane ranges.
func New(catalog *fields.Catalog, researcher Researcher) *Generator {
	return &Generator{
		catalog:    catalog,
		researcher: researcher,
		validators: map[string]Validator{
			"cost_of_living_usd": rangeValidator(300, 8000),
			"healthcare_score":   rangeValidator(0, 100),
			"safety_score":       rangeValidator(0, 100),
		},
	}
}

// WithValidator registers or replaces a per-field validator.
func (g *Generator) WithValidator(fieldName string, v Validator) *Generator {
	g.validators[fieldName] = v
	return g
}

// Generate researches the given fields strictly sequentially, in input
// order. Each collaborator call is rate-limited and cost-metered, so the
// loop is intentionally serial and progress reporting is deterministic.
//
// Cancellation is cooperative: the context is checked between field
// iterations only, never interrupting an in-flight collaborator call. On
// cancellation the suggestions gathered so far are returned together with
// the context error.
func (g *Generator) Generate(ctx context.Context, record store.Record, toUpdate []analyze.Field, onProgress ProgressFunc) ([]Suggestion, error) {
	log := logging.Ctx(ctx)
	suggestions := make([]Suggestion, 0, len(toUpdate))

	for i, field := range toUpdate {
		if err := ctx.Err(); err != nil {
			return suggestions, err
		}

		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: len(toUpdate), Field: field.Name})
		}

		// Stable fields with any existing value are trusted outright:
		// no collaborator call, no suggestion.
		if g.catalog.IsTrusted(field.Name) && hasValue(field.CurrentValue) {
			log.Debug().
				Str("field", field.Name).
				Msg("Existing value trusted, skipping research")
			continue
		}

		suggestions = g.appendResult(ctx, suggestions, record, field)
	}

	return suggestions, nil
}

// appendResult performs one research call and folds its outcome into the
// suggestion list.
func (g *Generator) appendResult(ctx context.Context, suggestions []Suggestion, record store.Record, field analyze.Field) []Suggestion {
	log := logging.Ctx(ctx)

	result, err := g.researcher.Research(ctx, record, field.Name, field.CurrentValue)
	if err != nil {
		log.Warn().
			Err(err).
			Str("field", field.Name).
			Msg("Research collaborator failed for field")
		return append(suggestions, Suggestion{
			Field:        field.Name,
			CurrentValue: field.CurrentValue,
			Confidence:   audit.ConfidenceUnknown,
			Reason:       fmt.Sprintf("Error: %s", err.Error()),
			Weight:       field.Weight,
		})
	}

	if !result.Success || result.SuggestedValue == nil {
		reason := result.Reasoning
		if reason == "" {
			reason = "AI could not generate suggestion"
		}
		return append(suggestions, Suggestion{
			Field:        field.Name,
			CurrentValue: field.CurrentValue,
			Confidence:   audit.ConfidenceUnknown,
			Reason:       reason,
			Weight:       field.Weight,
		})
	}

	if v, ok := g.validators[field.Name]; ok {
		if verr := v(result.SuggestedValue); verr != nil {
			log.Warn().
				Err(verr).
				Str("field", field.Name).
				Msg("Suggested value failed validation")
			return append(suggestions, Suggestion{
				Field:        field.Name,
				CurrentValue: field.CurrentValue,
				Confidence:   audit.ConfidenceLow,
				Reason:       verr.Error(),
				Weight:       field.Weight,
			})
		}
	}

	// A proposal identical to the current value wastes reviewer time;
	// emit nothing.
	if trimmed(result.SuggestedValue) == trimmed(field.CurrentValue) {
		log.Debug().
			Str("field", field.Name).
			Msg("Suggestion matches current value, skipping")
		return suggestions
	}

	confidence := result.Confidence
	if confidence == "" {
		confidence = audit.ConfidenceLimited
	}
	reason := result.Reasoning
	if reason == "" {
		reason = field.Reason
	}

	return append(suggestions, Suggestion{
		Field:          field.Name,
		CurrentValue:   field.CurrentValue,
		SuggestedValue: result.SuggestedValue,
		Confidence:     confidence,
		Reason:         reason,
		Weight:         field.Weight,
		Selected:       true,
	})
}

// hasValue reports whether a current value is present and non-blank.
func hasValue(value any) bool {
	if value == nil {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(value)) != ""
}

// trimmed stringifies a value for the identical-suggestion check.
func trimmed(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// rangeValidator rejects numeric values outside [min, max]. Values that
// do not parse as numbers are rejected too; they usually indicate an
// annual figure, a local currency, or a hallucination.
func rangeValidator(min, max float64) Validator {
	return func(value any) error {
		n, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("suggested value %v is not numeric: %w", value, err)
		}
		if n < min || n > max {
			return fmt.Errorf("suggested value %v is outside reasonable range (%g-%g); manual research recommended", value, min, max)
		}
		return nil
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
