// Package analyze scans a catalog record against its audit state and
// produces the prioritized list of fields that need curation attention.
package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/store"
)

// Field is one prioritized curation candidate.
type Field struct {
	Name         string           `json:"field_name"`
	CurrentValue any              `json:"current_value"`
	Reason       string           `json:"reason"`
	Weight       int              `json:"priority"`
	Confidence   audit.Confidence `json:"confidence"`
}

// Analyzer flags record fields that are empty or held with low
// confidence.
type Analyzer struct {
	catalog *fields.Catalog
}

// New creates an Analyzer over the given field catalog.
func New(catalog *fields.Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Analyze returns the fields of record needing attention, sorted by
// descending priority weight. A field qualifies when its value is empty or
// placeholder-like, or when its audit confidence is low or unknown.
// System fields are always excluded.
//
// group narrows the result to the catalog's critical or supplemental
// classification; the empty group keeps everything. subset, when non-nil,
// further narrows to the named fields (a UI-tab scope).
func (a *Analyzer) Analyze(record store.Record, auditMap audit.Map, group fields.Group, subset []string) []Field {
	var flagged []Field

	for name, value := range record {
		if a.catalog.IsSystemField(name) || name == "audit_data" {
			continue
		}

		confidence := auditMap.Confidence(name)

		switch {
		case isEmpty(value):
			flagged = append(flagged, Field{
				Name:       name,
				Reason:     "Empty/NULL value",
				Weight:     a.catalog.Weight(name),
				Confidence: confidence,
			})
		case confidence.Doubtful():
			flagged = append(flagged, Field{
				Name:         name,
				CurrentValue: value,
				Reason:       fmt.Sprintf("Low confidence (%s)", confidence),
				Weight:       a.catalog.Weight(name),
				Confidence:   confidence,
			})
		}
	}

	// Highest weight first; name breaks ties so output is stable.
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Weight != flagged[j].Weight {
			return flagged[i].Weight > flagged[j].Weight
		}
		return flagged[i].Name < flagged[j].Name
	})

	if group != "" {
		flagged = a.filterGroup(flagged, group)
	}
	if subset != nil {
		flagged = filterSubset(flagged, subset)
	}

	return flagged
}

// filterGroup keeps fields whose catalog group matches.
func (a *Analyzer) filterGroup(candidates []Field, group fields.Group) []Field {
	out := make([]Field, 0, len(candidates))
	for _, f := range candidates {
		if a.catalog.Group(f.Name) == group {
			out = append(out, f)
		}
	}
	return out
}

// filterSubset keeps fields named in the caller's scope.
func filterSubset(candidates []Field, subset []string) []Field {
	allowed := make(map[string]bool, len(subset))
	for _, name := range subset {
		allowed[name] = true
	}
	out := make([]Field, 0, len(candidates))
	for _, f := range candidates {
		if allowed[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// isEmpty reports whether a value is missing or placeholder-like.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		trimmed := strings.TrimSpace(s)
		return trimmed == "" || trimmed == "NULL" || trimmed == "null"
	}
	return false
}
