// Package normalize reconciles catalog field values across their
// serialization forms. A set-valued field may arrive as a native list, a
// comma-separated string, or a Postgres-style brace literal like
// {"Coastal","Mountain"}; each target mode maps any of those forms onto
// one canonical representation.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
)

// Mode selects the normalization target.
type Mode string

// String returns the string representation of a Mode.
func (m Mode) String() string {
	return string(m)
}

// Normalization modes.
const (
	// ModeDB targets the canonical storage representation: array fields
	// become []string of lowercase trimmed tokens, everything else
	// passes through.
	ModeDB Mode = "db"

	// ModeDisplay targets a single human-editable string. Original
	// casing is preserved.
	ModeDisplay Mode = "display"

	// ModeCompare targets a canonical string for equality testing,
	// insensitive to input form, casing, and ordering.
	ModeCompare Mode = "compare"

	// ModeCategorical lowercases and trims a scalar for validation
	// against an enumerated option list.
	ModeCategorical Mode = "categorical"
)

// Normalizer transforms field values using the catalog's array-field
// classification. It is stateless and safe for concurrent use.
type Normalizer struct {
	catalog *fields.Catalog
}

// New creates a Normalizer over the given field catalog.
func New(catalog *fields.Catalog) *Normalizer {
	return &Normalizer{catalog: catalog}
}

// Normalize transforms value into the given mode's canonical form for the
// named field. An unknown mode is a programming mistake and returns a
// ConfigError.
func (n *Normalizer) Normalize(fieldName string, value any, mode Mode) (any, error) {
	switch mode {
	case ModeDB:
		return n.toDB(fieldName, value), nil
	case ModeDisplay:
		return toDisplay(value), nil
	case ModeCompare:
		return n.toCompare(fieldName, value), nil
	case ModeCategorical:
		return toCategorical(value), nil
	default:
		return nil, errors.NewConfigError("normalize",
			fmt.Sprintf("unknown normalization mode %q", mode), nil)
	}
}

// Compare returns the canonical comparison string for a value. It never
// fails; it is Normalize with ModeCompare and the string result unwrapped.
func (n *Normalizer) Compare(fieldName string, value any) string {
	s, _ := n.Normalize(fieldName, value, ModeCompare)
	return s.(string)
}

// Display returns the human-editable display string for a value.
func (n *Normalizer) Display(value any) string {
	return toDisplay(value)
}

// Equal reports whether two values denote the same field content in
// canonical comparison form, independent of serialization, casing, and
// ordering.
func (n *Normalizer) Equal(fieldName string, a, b any) bool {
	return n.Compare(fieldName, a) == n.Compare(fieldName, b)
}

// toDB produces the canonical storage representation.
func (n *Normalizer) toDB(fieldName string, value any) any {
	if !n.catalog.IsArrayField(fieldName) {
		return value
	}
	return tokens(value, true)
}

// toCompare produces the canonical comparison string.
func (n *Normalizer) toCompare(fieldName string, value any) string {
	if n.catalog.IsArrayField(fieldName) {
		toks := tokens(value, true)
		sort.Strings(toks)
		return strings.Join(toks, ", ")
	}
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// toDisplay produces a single human-editable string, preserving casing.
func toDisplay(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return ""
		}
		if isBraceLiteral(trimmed) {
			return strings.Join(braceTokens(trimmed, false), ", ")
		}
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case []string:
		return strings.Join(cleanTokens(v, false), ", ")
	case []any:
		raw := make([]string, 0, len(v))
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
		return strings.Join(cleanTokens(raw, false), ", ")
	default:
		return fmt.Sprint(v)
	}
}

// toCategorical lowercases and trims a scalar value.
func toCategorical(value any) string {
	if value == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
}

// tokens extracts the token list from whichever serialization the value
// arrived in. Empty tokens from trailing commas or blank segments are
// always dropped.
func tokens(value any, lower bool) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanTokens(v, lower)
	case []any:
		raw := make([]string, 0, len(v))
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
		return cleanTokens(raw, lower)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return []string{}
		}
		if isBraceLiteral(trimmed) {
			return braceTokens(trimmed, lower)
		}
		return cleanTokens(strings.Split(trimmed, ","), lower)
	default:
		return cleanTokens([]string{fmt.Sprint(v)}, lower)
	}
}

// cleanTokens trims every token, optionally lowercases, and drops empties.
func cleanTokens(raw []string, lower bool) []string {
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if lower {
			tok = strings.ToLower(tok)
		}
		out = append(out, tok)
	}
	return out
}

// isBraceLiteral reports whether a trimmed string is a Postgres-style
// array literal.
func isBraceLiteral(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// braceTokens parses a brace literal: the outer braces are stripped, the
// body splits on commas, and each token loses surrounding quotes.
func braceTokens(s string, lower bool) []string {
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return []string{}
	}
	parts := strings.Split(body, ",")
	raw := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"`)
		raw = append(raw, part)
	}
	return cleanTokens(raw, lower)
}
